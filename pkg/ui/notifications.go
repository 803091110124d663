package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// NotificationSender sends a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=vkbackup", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("vkbackup").Show($toast)
	`, xmlEscape(title), xmlEscape(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// Notifier prints run results to the console and, when enabled, raises a
// desktop notification
type Notifier struct {
	sender  NotificationSender
	out     io.Writer
	enabled bool
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier(enabled bool) *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}

	return &Notifier{sender: sender, out: Stdout, enabled: enabled}
}

// NewNotifierWithSender is used by tests
func NewNotifierWithSender(sender NotificationSender, out io.Writer) *Notifier {
	return &Notifier{sender: sender, out: out, enabled: true}
}

func (n *Notifier) send(title, message string) {
	if n.enabled && n.sender != nil {
		// notifications are best effort
		_ = n.sender.Send(title, message)
	}
}

// SendNotification prints and sends a neutral notification
func (n *Notifier) SendNotification(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Cyan(title), Yellow(message))
	n.send(title, message)
}

// SendError prints and sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess prints and sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

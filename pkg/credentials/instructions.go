package credentials

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide prints where each token comes from and how the token file
// is laid out.
func ShowTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TOKENS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. VK access token")
	fmt.Fprintln(w, "   Create a standalone app at https://vk.com/apps?act=manage, then open")
	fmt.Fprintln(w, "   https://oauth.vk.com/authorize?client_id=<APP_ID>&display=page&scope=photos&response_type=token&v=5.199")
	fmt.Fprintln(w, "   and copy access_token from the redirect URL.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "2. Yandex.Disk OAuth token")
	fmt.Fprintln(w, "   Get a debug token at https://yandex.ru/dev/disk/poligon/")
	fmt.Fprintln(w, "   or via https://oauth.yandex.ru/authorize?response_type=token&client_id=<CLIENT_ID>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Token file (tokens.txt by default), one name=value per line:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   %s=vk1.a.xxxxxxxx\n", KeySourceToken)
	fmt.Fprintf(w, "   %s=y0_xxxxxxxx   (optional)\n", KeyDestToken)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The Yandex token can also be kept in the system keychain:")
	fmt.Fprintln(w, "   vkbackup auth set yandex")
	fmt.Fprintf(w, "or supplied as %s.\n", EnvVar("yandex"))
	fmt.Fprintln(w, rule)
}

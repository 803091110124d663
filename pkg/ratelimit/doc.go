// Package ratelimit keeps vkbackup under the request quotas of the services
// it talks to.
//
// TokenBucket is used for the VK API and photo downloads
// (vk.requests_per_second). SlidingWindow paces Yandex.Disk REST calls.
// Both implement Limiter; Wait honours context cancellation.
//
//	limiter := ratelimit.PerSecond(3)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit

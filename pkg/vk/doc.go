// Package vk is the source side of vkbackup: it lists a user's album with
// photos.get and downloads the chosen renditions.
//
// Each photo is reduced to a models.PhotoRecord using its largest rendition
// by the provider's size ranking (see Rank). Requests share one token bucket
// so listing and downloading together stay under vk.requests_per_second.
package vk

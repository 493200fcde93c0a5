package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"reuse-market/services/market/helpers"
)

const maxComposerPhotos = 10

var (
	ErrTooManyPhotos    = errors.New("a listing holds at most 10 photos")
	ErrUnsupportedPhoto = errors.New("photos must be JPEG or PNG")
)

// composerPhoto tracks one attached photo through its upload.
type composerPhoto struct {
	Filename string
	Name     string
	URL      string
	Uploaded bool
	removed  bool
}

// Composer drives the new-listing form. Photos upload as they are
// attached; the listing can only be submitted once every remaining photo
// has a stored URL.
type Composer struct {
	client *Client

	Name        string
	Description string
	Quality     string
	Location    string
	TagsInput   string
	Price       float64
	SelfPickup  bool

	mu     sync.Mutex
	photos []*composerPhoto
}

// NewComposer creates a Composer on top of the given client.
func NewComposer(c *Client) *Composer {
	return &Composer{client: c}
}

// AddPhoto uploads one photo and records its stored URL. If the photo is
// removed while the upload is in flight, the late result is discarded and
// the server copy deleted instead of resurrecting the entry. Failed
// uploads drop the entry.
func (cp *Composer) AddPhoto(ctx context.Context, filename, contentType string, r io.Reader) error {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return ErrUnsupportedPhoto
	}

	cp.mu.Lock()
	if len(cp.photos) >= maxComposerPhotos {
		cp.mu.Unlock()
		return ErrTooManyPhotos
	}
	photo := &composerPhoto{Filename: filename}
	cp.photos = append(cp.photos, photo)
	cp.mu.Unlock()

	uploaded, err := cp.client.UploadPhoto(ctx, filename, contentType, r)

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if err != nil {
		cp.drop(photo)
		return err
	}
	if photo.removed {
		// Removed mid-upload: the entry stays gone, the server copy goes too.
		go cp.client.DeletePhoto(context.WithoutCancel(ctx), uploaded.Name)
		return nil
	}

	photo.Name = uploaded.Name
	photo.URL = uploaded.URL
	photo.Uploaded = true
	return nil
}

// RemovePhoto detaches the photo at the given position. An uploaded copy
// is deleted from the server best-effort.
func (cp *Composer) RemovePhoto(ctx context.Context, index int) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if index < 0 || index >= len(cp.photos) {
		return
	}
	photo := cp.photos[index]
	photo.removed = true
	cp.drop(photo)

	if photo.Uploaded {
		go cp.client.DeletePhoto(context.WithoutCancel(ctx), photo.Name)
	}
}

// drop removes the entry from the slice. Caller holds the lock.
func (cp *Composer) drop(photo *composerPhoto) {
	for i, p := range cp.photos {
		if p == photo {
			cp.photos = append(cp.photos[:i], cp.photos[i+1:]...)
			return
		}
	}
}

// PhotoURLs returns the stored URLs of the uploaded photos, in order.
func (cp *Composer) PhotoURLs() []string {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	urls := []string{}
	for _, photo := range cp.photos {
		if photo.Uploaded {
			urls = append(urls, photo.URL)
		}
	}
	return urls
}

// PhotoCount returns the number of attached photos, pending or uploaded.
func (cp *Composer) PhotoCount() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.photos)
}

// CanSubmit reports whether the form is complete: all required text
// fields filled, at least one photo, and no photo still uploading.
func (cp *Composer) CanSubmit() bool {
	if strings.TrimSpace(cp.Name) == "" ||
		strings.TrimSpace(cp.Description) == "" ||
		strings.TrimSpace(cp.Quality) == "" {
		return false
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if len(cp.photos) == 0 {
		return false
	}
	for _, photo := range cp.photos {
		if !photo.Uploaded || photo.URL == "" {
			return false
		}
	}
	return true
}

// Submit posts the listing and returns the new item's id. Tags are the
// comma-split, trimmed pieces of TagsInput.
func (cp *Composer) Submit(ctx context.Context) (string, error) {
	if !cp.CanSubmit() {
		return "", errors.New("listing is incomplete")
	}

	item, err := cp.client.CreateItem(ctx, helpers.CreateItemRequest{
		Quality:       cp.Quality,
		Name:          cp.Name,
		Description:   cp.Description,
		Location:      cp.Location,
		Tags:          splitTags(cp.TagsInput),
		PhotoURLs:     cp.PhotoURLs(),
		CanSelfPickup: cp.SelfPickup,
		Price:         cp.Price,
	})
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

func splitTags(input string) []string {
	tags := []string{}
	for _, tag := range strings.Split(input, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

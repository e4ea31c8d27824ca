package mutation

import (
	"context"
	"net/http"
	"strings"
)

// Image is a raw image payload received from a form.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Asset is an image stored on the remote host.
type Asset struct {
	URL      string
	PublicID string
}

// Uploader pushes images to a hosting service.
type Uploader interface {
	Upload(ctx context.Context, img Image) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// CheckImage rejects payloads that are empty or do not sniff as image/*.
// On success the detected type replaces whatever the client declared.
func CheckImage(img *Image) error {
	if img == nil || len(img.Data) == 0 {
		return Errorf(Invalid, "No image file provided")
	}
	ct := http.DetectContentType(img.Data)
	if !strings.HasPrefix(ct, "image/") {
		return Errorf(Invalid, "image must be an image file, got %s", ct)
	}
	img.ContentType = ct
	return nil
}

// UploadImage sends img to u. A transport failure or a response without a
// URL are both reported as UploadFailed.
func UploadImage(ctx context.Context, u Uploader, img Image) (Asset, error) {
	asset, err := u.Upload(ctx, img)
	if err != nil {
		return Asset{}, Wrap(UploadFailed, err, "Error uploading image")
	}
	if asset.URL == "" {
		return Asset{}, Errorf(UploadFailed, "Error uploading image: no URL returned")
	}
	return asset, nil
}

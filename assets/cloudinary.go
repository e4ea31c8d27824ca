package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/adminpro/storefront-admin/app/mutation"
)

// uploadAPI is the part of the Cloudinary upload API the uploader needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores images on Cloudinary. Each upload gets a fresh public id
// under Folder, so uploads never overwrite each other.
type Cloudinary struct {
	api    uploadAPI
	folder string
	newID  func() string
}

// NewCloudinary builds an uploader from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return newCloudinary(&cld.Upload, folder), nil
}

func newCloudinary(api uploadAPI, folder string) *Cloudinary {
	return &Cloudinary{api: api, folder: folder, newID: uuid.NewString}
}

func (c *Cloudinary) Upload(ctx context.Context, img mutation.Image) (mutation.Asset, error) {
	overwrite := false
	params := uploader.UploadParams{
		PublicID:     c.newID(),
		Folder:       c.folder,
		ResourceType: "auto",
		Overwrite:    &overwrite,
	}

	res, err := c.api.Upload(ctx, bytes.NewReader(img.Data), params)
	if err != nil {
		return mutation.Asset{}, err
	}
	if res.Error.Message != "" {
		return mutation.Asset{}, errors.New(res.Error.Message)
	}

	publicID := res.PublicID
	if publicID == "" {
		publicID = path.Join(c.folder, params.PublicID)
	}
	return mutation.Asset{URL: res.SecureURL, PublicID: publicID}, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("destroy %s: %s", publicID, res.Result)
	}
	return nil
}

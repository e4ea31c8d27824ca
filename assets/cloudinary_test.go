package assets

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminpro/storefront-admin/app/mutation"
)

// --- Mock API ---

type mockUploadAPI struct {
	UploadResult  *uploader.UploadResult
	DestroyResult *uploader.DestroyResult
	Err           error

	lastParams    uploader.UploadParams
	lastBody      []byte
	lastDestroyed string
}

func (m *mockUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	m.lastParams = params
	if r, ok := file.(io.Reader); ok {
		m.lastBody, _ = io.ReadAll(r)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.UploadResult, nil
}

func (m *mockUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	m.lastDestroyed = params.PublicID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DestroyResult, nil
}

func newTestUploader(m *mockUploadAPI) *Cloudinary {
	c := newCloudinary(m, "admin")
	c.newID = func() string { return "fixed-id" }
	return c
}

// --- Tests ---

func TestUpload(t *testing.T) {
	testCases := []struct {
		name      string
		api       *mockUploadAPI
		wantAsset mutation.Asset
		wantErr   string
	}{
		{
			name: "Success",
			api: &mockUploadAPI{UploadResult: &uploader.UploadResult{
				PublicID:  "admin/fixed-id",
				SecureURL: "https://res.cloudinary.com/demo/image/upload/admin/fixed-id.png",
			}},
			wantAsset: mutation.Asset{
				URL:      "https://res.cloudinary.com/demo/image/upload/admin/fixed-id.png",
				PublicID: "admin/fixed-id",
			},
		},
		{
			name:      "Public id falls back to folder path",
			api:       &mockUploadAPI{UploadResult: &uploader.UploadResult{SecureURL: "https://x/y.png"}},
			wantAsset: mutation.Asset{URL: "https://x/y.png", PublicID: "admin/fixed-id"},
		},
		{
			name:    "Transport error",
			api:     &mockUploadAPI{Err: errors.New("dial tcp: timeout")},
			wantErr: "dial tcp: timeout",
		},
		{
			name: "API error in body",
			api: &mockUploadAPI{UploadResult: &uploader.UploadResult{
				Error: api.ErrorResp{Message: "Invalid image file"},
			}},
			wantErr: "Invalid image file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestUploader(tc.api)

			asset, err := c.Upload(context.Background(), mutation.Image{Data: []byte("payload")})

			assert.Equal(t, "fixed-id", tc.api.lastParams.PublicID)
			assert.Equal(t, "admin", tc.api.lastParams.Folder)
			require.NotNil(t, tc.api.lastParams.Overwrite)
			assert.False(t, *tc.api.lastParams.Overwrite)
			assert.Equal(t, []byte("payload"), tc.api.lastBody)

			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAsset, asset)
		})
	}
}

func TestDestroy(t *testing.T) {
	m := &mockUploadAPI{DestroyResult: &uploader.DestroyResult{Result: "ok"}}
	c := newTestUploader(m)
	require.NoError(t, c.Destroy(context.Background(), "admin/abc"))
	assert.Equal(t, "admin/abc", m.lastDestroyed)

	m.DestroyResult = &uploader.DestroyResult{Result: "not found"}
	assert.NoError(t, c.Destroy(context.Background(), "admin/abc"))

	m.DestroyResult = &uploader.DestroyResult{Result: "error"}
	assert.EqualError(t, c.Destroy(context.Background(), "admin/abc"), "destroy admin/abc: error")

	m.Err = errors.New("boom")
	assert.EqualError(t, c.Destroy(context.Background(), "admin/abc"), "boom")
}

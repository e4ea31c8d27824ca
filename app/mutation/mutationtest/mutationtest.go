// Package mutationtest provides in-memory collaborators for pipeline tests.
package mutationtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"

	"github.com/adminpro/storefront-admin/app/mutation"
)

// PNG is the smallest payload that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

// Image returns a fresh PNG upload.
func Image() *mutation.Image {
	data := make([]byte, len(PNG))
	copy(data, PNG)
	return &mutation.Image{Data: data, Filename: "image.png", ContentType: "image/png"}
}

// Uploader hands out sequential URLs and records every call.
type Uploader struct {
	mu        sync.Mutex
	Err       error
	NoURL     bool
	Uploads   []mutation.Image
	Destroyed []string
}

func (u *Uploader) Upload(ctx context.Context, img mutation.Image) (mutation.Asset, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Uploads = append(u.Uploads, img)
	if u.Err != nil {
		return mutation.Asset{}, u.Err
	}
	if u.NoURL {
		return mutation.Asset{}, nil
	}
	n := len(u.Uploads)
	return mutation.Asset{
		URL:      fmt.Sprintf("https://img.example.com/admin/%d.png", n),
		PublicID: fmt.Sprintf("admin/%d", n),
	}, nil
}

func (u *Uploader) Destroy(ctx context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Destroyed = append(u.Destroyed, publicID)
	return nil
}

// URL is the address the nth upload (1-based) receives.
func URL(n int) string {
	return fmt.Sprintf("https://img.example.com/admin/%d.png", n)
}

// Event is one published message.
type Event struct {
	Topic   string
	Payload any
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Err    error
	Events []Event
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, Event{Topic: topic, Payload: event})
	return p.Err
}

// Topics lists published topics in order.
func (p *Publisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Topic
	}
	return out
}

// Cache is a map-backed cache.Store with the same generation rules as
// cache.Redis.
type Cache struct {
	mu          sync.Mutex
	Values      map[string][]byte
	Gens        map[string]int64
	savedAt     map[string]int64
	Invalidated []string
}

func NewCache() *Cache {
	return &Cache{Values: map[string][]byte{}, Gens: map[string]int64{}, savedAt: map[string]int64{}}
}

func (c *Cache) Load(ctx context.Context, key string, dst any) (bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.Gens[key]
	data, ok := c.Values[key]
	if !ok || c.savedAt[key] != gen {
		return false, gen, nil
	}
	return true, gen, json.Unmarshal(data, dst)
}

func (c *Cache) Save(ctx context.Context, key string, gen int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Values[key] = data
	c.savedAt[key] = gen
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.Gens[k]++
		delete(c.Values, k)
		c.Invalidated = append(c.Invalidated, k)
	}
	return nil
}

// Multipart encodes fields and an optional image part named "image".
// It returns the body and its Content-Type.
func Multipart(fields map[string]string, image []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_ = mw.WriteField(k, fields[k])
	}
	if image != nil {
		part, _ := mw.CreateFormFile("image", "image.png")
		_, _ = part.Write(image)
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

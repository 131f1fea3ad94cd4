package qrcode

import (
	"context"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

// LocalRenderer encodes QR codes in-process. It is the default when no
// remote renderer is configured.
type LocalRenderer struct {
	Size  int
	Level goqrcode.RecoveryLevel
}

func NewLocalRenderer(size int) *LocalRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &LocalRenderer{Size: size, Level: goqrcode.Medium}
}

func (r *LocalRenderer) Available() bool {
	return r != nil
}

// Render returns the PNG encoding of data. A non-positive size falls back
// to the renderer's configured size.
func (r *LocalRenderer) Render(ctx context.Context, data string, size int) ([]byte, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = r.Size
	}
	png, err := goqrcode.Encode(data, r.Level, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

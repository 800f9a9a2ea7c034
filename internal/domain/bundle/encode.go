package bundle

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/prodlens/internal/domain"
)

const encodeChunk = 32 << 10

// Encode reads r to EOF and returns its standard base64 form without any header.
// It stops early when ctx is cancelled. Read failures and empty input wrap domain.ErrEncoding.
func Encode(ctx context.Context, r io.Reader) (string, error) {
	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)

	buf := make([]byte, encodeChunk)
	var total int
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrEncoding, err)
		}
		n, err := r.Read(buf)
		if n > 0 {
			total += n
			_, _ = enc.Write(buf[:n]) // strings.Builder never fails
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: read image: %w", domain.ErrEncoding, err)
		}
	}
	_ = enc.Close()

	if total == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrEncoding)
	}
	return sb.String(), nil
}

package chunk

import "errors"

var (
	// ErrInvalidChunkSize はチャンクサイズが0以下の場合のエラー
	ErrInvalidChunkSize = errors.New("chunk_size must be > 0")

	// ErrInvalidOverlap はオーバーラップが範囲外の場合のエラー
	ErrInvalidOverlap = errors.New("overlap must be >= 0 and < chunk_size")
)

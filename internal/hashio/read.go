package hashio

import (
	"crypto/sha1" //nolint
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

const size = 512

var ErrHasherNotFound = errors.New("hasher func not found")

// ReadAll reads in blocks by buf size and hashes
func ReadAll(r io.Reader, hasher hash.Hash) ([]byte, error) {
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("read: %w", err)
		}
	}

	return hasher.Sum(nil), nil
}

// HexSum fully reads r and returns the hex encoded digest of its content
func HexSum(r io.Reader, hasherFunc func() hash.Hash) (string, error) {
	if hasherFunc == nil {
		return "", ErrHasherNotFound
	}

	sum, err := ReadAll(r, hasherFunc())
	if err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}

	return hex.EncodeToString(sum), nil
}

func SHA1() func() hash.Hash {
	return func() hash.Hash {
		return sha1.New()
	}
}

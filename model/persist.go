// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/storage"
)

const (
	// FormatVersion is the artifact layout version written by Save.
	FormatVersion byte = 1

	digestSize = 32
)

var magic = []byte("VRTY")

var (
	// ErrBadMagic indicates the file is not a verity artifact.
	ErrBadMagic = errors.New("not a model artifact")

	// ErrUnsupportedVersion indicates an artifact written by an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported artifact version")

	// ErrDigestMismatch indicates the artifact body does not match its digest.
	ErrDigestMismatch = errors.New("artifact digest mismatch")
)

// Encode serializes a pipeline to the artifact layout:
//
//	"VRTY" | version | body | BLAKE2b-256(magic, version, body)
//
// It returns the encoded bytes and the hex digest.
func Encode(p *Pipeline) ([]byte, string, error) {
	if p == nil {
		return nil, "", fmt.Errorf("%w: pipeline is nil", core.ErrPersistence)
	}
	body := storage.MarshalModelArtifact(p.Artifact())

	buf := make([]byte, 0, len(magic)+1+len(body)+digestSize)
	buf = append(buf, magic...)
	buf = append(buf, FormatVersion)
	buf = append(buf, body...)

	sum, err := digest(buf)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return append(buf, sum...), hex.EncodeToString(sum), nil
}

// Decode verifies and parses an artifact produced by Encode.
func Decode(data []byte) (*Pipeline, string, error) {
	header := len(magic) + 1
	if len(data) < header+digestSize || !bytes.Equal(data[:len(magic)], magic) {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, ErrBadMagic)
	}
	if v := data[len(magic)]; v != FormatVersion {
		return nil, "", fmt.Errorf("%w: %w: %d", core.ErrPersistence, ErrUnsupportedVersion, v)
	}

	content, trailer := data[:len(data)-digestSize], data[len(data)-digestSize:]
	sum, err := digest(content)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	if !bytes.Equal(sum, trailer) {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, ErrDigestMismatch)
	}

	artifact, err := storage.UnmarshalModelArtifact(content[header:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	p, err := FromArtifact(artifact)
	if err != nil {
		return nil, "", err
	}
	return p, hex.EncodeToString(sum), nil
}

// Save writes the pipeline to path, replacing any existing file, and returns
// the artifact digest. The file is written to a temporary sibling first and
// renamed into place so readers never observe a partial artifact.
func Save(path string, p *Pipeline) (string, error) {
	data, sum, err := Encode(p)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return sum, nil
}

// Load reads and verifies the artifact at path.
func Load(path string) (*Pipeline, error) {
	p, _, err := LoadWithDigest(path)
	return p, err
}

// LoadWithDigest reads and verifies the artifact at path and also returns
// its hex digest.
func LoadWithDigest(path string) (*Pipeline, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	p, sum, err := Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return p, sum, nil
}

func digest(data []byte) ([]byte, error) {
	h, err := blake2b.New(digestSize, nil)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

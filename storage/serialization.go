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

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/verity/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalModelArtifact serializes a ModelArtifact to bytes.
func MarshalModelArtifact(a *core.ModelArtifact) []byte {
	var e encoder
	e.strings(a.Terms)
	e.floats(a.IDF)
	e.labels(a.Classes)
	e.floats(a.Weights)
	e.float(a.Intercept)
	return e.finish()
}

// UnmarshalModelArtifact deserializes a ModelArtifact from bytes.
func UnmarshalModelArtifact(data []byte) (*core.ModelArtifact, error) {
	d := decoder{bs: data}
	a := &core.ModelArtifact{
		Terms:     d.strings(),
		IDF:       d.floats(),
		Classes:   d.labels(),
		Weights:   d.floats(),
		Intercept: d.float(),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return a, nil
}

// MarshalTrainingRun serializes a TrainingRun to bytes.
// Timestamps are stored with microsecond precision.
func MarshalTrainingRun(run *core.TrainingRun) []byte {
	var e encoder
	e.uint(uint64(run.Id))
	e.string(run.ArtifactPath)
	e.string(run.Digest)
	e.time(run.StartedAt)
	e.time(run.FinishedAt)
	e.int(run.TrainSize)
	e.int(run.TestSize)
	e.int(run.VocabularySize)
	e.float(run.Accuracy)
	e.int(len(run.Classes))
	for _, c := range run.Classes {
		e.int(int(c.Label))
		e.float(c.Precision)
		e.float(c.Recall)
		e.float(c.F1)
		e.int(c.Support)
	}
	return e.finish()
}

// UnmarshalTrainingRun deserializes a TrainingRun from bytes.
func UnmarshalTrainingRun(data []byte) (*core.TrainingRun, error) {
	d := decoder{bs: data}
	run := &core.TrainingRun{
		Id:             core.ID(d.uint()),
		ArtifactPath:   d.string(),
		Digest:         d.string(),
		StartedAt:      d.time(),
		FinishedAt:     d.time(),
		TrainSize:      d.int(),
		TestSize:       d.int(),
		VocabularySize: d.int(),
		Accuracy:       d.float(),
	}
	n := d.length(4)
	for i := 0; i < n; i++ {
		run.Classes = append(run.Classes, core.ClassMetrics{
			Label:     core.Label(d.int()),
			Precision: d.float(),
			Recall:    d.float(),
			F1:        d.float(),
			Support:   d.int(),
		})
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return run, nil
}

// encoder appends mus-encoded values to a growing buffer.
type encoder struct {
	bs []byte
}

func (e *encoder) grow(n int) []byte {
	start := len(e.bs)
	e.bs = append(e.bs, make([]byte, n)...)
	return e.bs[start:]
}

func (e *encoder) int(v int) {
	varint.Int.Marshal(v, e.grow(varint.Int.Size(v)))
}

func (e *encoder) uint(v uint64) {
	varint.Uint64.Marshal(v, e.grow(varint.Uint64.Size(v)))
}

func (e *encoder) float(v float64) {
	raw.Float64.Marshal(v, e.grow(raw.Float64.Size(v)))
}

func (e *encoder) string(v string) {
	ord.String.Marshal(v, e.grow(ord.String.Size(v)))
}

func (e *encoder) time(t time.Time) {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	varint.Int64.Marshal(micros, e.grow(varint.Int64.Size(micros)))
}

func (e *encoder) strings(vs []string) {
	e.int(len(vs))
	for _, v := range vs {
		e.string(v)
	}
}

func (e *encoder) floats(vs []float64) {
	e.int(len(vs))
	for _, v := range vs {
		e.float(v)
	}
}

func (e *encoder) labels(vs []core.Label) {
	e.int(len(vs))
	for _, v := range vs {
		e.int(int(v))
	}
}

func (e *encoder) finish() []byte {
	return e.bs
}

// decoder reads mus-encoded values in order. The first failure is sticky:
// later reads return zero values and done reports the error.
type decoder struct {
	bs  []byte
	off int
	err error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs[d.off:])
	if err != nil {
		d.fail(err)
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) uint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.off:])
	if err != nil {
		d.fail(err)
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) float() float64 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(d.bs[d.off:])
	if err != nil {
		d.fail(err)
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.off:])
	if err != nil {
		d.fail(err)
		return ""
	}
	d.off += n
	return v
}

func (d *decoder) time() time.Time {
	if d.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.off:])
	if err != nil {
		d.fail(err)
		return time.Time{}
	}
	d.off += n
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

// length reads a collection length and rejects values that cannot fit in
// the remaining input, given at least minElemSize bytes per element.
func (d *decoder) length(minElemSize int) int {
	n := d.int()
	if d.err != nil {
		return 0
	}
	if n < 0 || n > (len(d.bs)-d.off)/minElemSize {
		d.fail(ErrTruncatedData)
		return 0
	}
	return n
}

func (d *decoder) strings() []string {
	n := d.length(1)
	out := make([]string, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		out = append(out, d.string())
	}
	return out
}

func (d *decoder) floats() []float64 {
	n := d.length(8)
	out := make([]float64, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		out = append(out, d.float())
	}
	return out
}

func (d *decoder) labels() []core.Label {
	n := d.length(1)
	out := make([]core.Label, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		out = append(out, core.Label(d.int()))
	}
	return out
}

func (d *decoder) done() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.bs) {
		return fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(d.bs)-d.off)
	}
	return nil
}

package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the core domain types. Field order is part of the
// stored format; append new fields at the end only.
var (
	IDMUS            = idMUS{}
	FileTypeMUS      = fileTypeMUS{}
	DocumentChunkMUS = documentChunkMUS{}

	vectorMUS = ord.NewSliceSer[float32](raw.Float32)
	timeMUS   = timeMicroMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type fileTypeMUS struct{}

func (fileTypeMUS) Marshal(ft FileType, bs []byte) int {
	return varint.Int.Marshal(int(ft), bs)
}

func (fileTypeMUS) Unmarshal(bs []byte) (FileType, int, error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return FileType(v), n, err
}

func (fileTypeMUS) Size(ft FileType) int {
	return varint.Int.Size(int(ft))
}

func (fileTypeMUS) Skip(bs []byte) (int, error) {
	return varint.Int.Skip(bs)
}

// timeMicroMUS stores timestamps as Unix microseconds, matching the
// precision used for date-ordered keys.
type timeMicroMUS struct{}

func (timeMicroMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMicroMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMicroMUS) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMicroMUS) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type documentChunkMUS struct{}

func (documentChunkMUS) Marshal(c DocumentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.SourceFile, bs[n:])
	n += FileTypeMUS.Marshal(c.FileType, bs[n:])
	n += varint.Int.Marshal(c.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(c.TotalChunks, bs[n:])
	n += varint.Int.Marshal(c.StartOffset, bs[n:])
	n += varint.Int.Marshal(c.EndOffset, bs[n:])
	n += varint.Int64.Marshal(c.FileSize, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += timeMUS.Marshal(c.InsertedAt, bs[n:])
	n += timeMUS.Marshal(c.UpdatedAt, bs[n:])
	return n
}

func (documentChunkMUS) Unmarshal(bs []byte) (c DocumentChunk, n int, err error) {
	var n1 int
	c.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.SourceFile, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.FileType, n1, err = FileTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.StartOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.EndOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.FileSize, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if len(c.Vector) == 0 {
		c.Vector = nil
	}
	c.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentChunkMUS) Size(c DocumentChunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.SourceFile)
	size += FileTypeMUS.Size(c.FileType)
	size += varint.Int.Size(c.ChunkIndex)
	size += varint.Int.Size(c.TotalChunks)
	size += varint.Int.Size(c.StartOffset)
	size += varint.Int.Size(c.EndOffset)
	size += varint.Int64.Size(c.FileSize)
	size += vectorMUS.Size(c.Vector)
	size += timeMUS.Size(c.InsertedAt)
	size += timeMUS.Size(c.UpdatedAt)
	return size
}

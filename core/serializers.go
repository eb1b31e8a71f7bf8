package core

import (
	"errors"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Field order follows struct
// declaration order and is part of the storage format: changing either breaks
// previously written databases.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}

	// CanonicalProductMUS serializes CanonicalProduct values.
	CanonicalProductMUS = canonicalProductMUS{}

	// ProductEmbeddingMUS serializes ProductEmbedding values.
	ProductEmbeddingMUS = productEmbeddingMUS{}
)

var errNegativeLength = errors.New("negative length")

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type canonicalProductMUS struct{}

func (s canonicalProductMUS) Marshal(v CanonicalProduct, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += marshalOptFloat64(v.Price, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.ImageURL, bs[n:])
	n += ord.String.Marshal(v.Brand, bs[n:])
	n += ord.String.Marshal(v.PackSize, bs[n:])
	n += ord.Bool.Marshal(v.Promo, bs[n:])
	n += marshalOptFloat64(v.ReducedPrice, bs[n:])
	n += marshalStringSlice(v.MergedFrom, bs[n:])
	n += ord.String.Marshal(v.Provenance.Name, bs[n:])
	n += ord.String.Marshal(v.Provenance.Price, bs[n:])
	n += ord.String.Marshal(v.Provenance.Category, bs[n:])
	n += ord.String.Marshal(v.Provenance.Description, bs[n:])
	n += ord.String.Marshal(v.Provenance.ImageURL, bs[n:])
	return n
}

func (s canonicalProductMUS) Unmarshal(bs []byte) (v CanonicalProduct, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Price, n1, err = unmarshalOptFloat64(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ImageURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Brand, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PackSize, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Promo, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ReducedPrice, n1, err = unmarshalOptFloat64(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.MergedFrom, n1, err = unmarshalStringSlice(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provenance.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provenance.Price, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provenance.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provenance.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provenance.ImageURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s canonicalProductMUS) Size(v CanonicalProduct) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += sizeOptFloat64(v.Price)
	size += ord.String.Size(v.Category)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.ImageURL)
	size += ord.String.Size(v.Brand)
	size += ord.String.Size(v.PackSize)
	size += ord.Bool.Size(v.Promo)
	size += sizeOptFloat64(v.ReducedPrice)
	size += sizeStringSlice(v.MergedFrom)
	size += ord.String.Size(v.Provenance.Name)
	size += ord.String.Size(v.Provenance.Price)
	size += ord.String.Size(v.Provenance.Category)
	size += ord.String.Size(v.Provenance.Description)
	size += ord.String.Size(v.Provenance.ImageURL)
	return size
}

func (s canonicalProductMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = skipOptFloat64(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ { // category, description, image url, brand, pack size
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = skipOptFloat64(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = skipStringSlice(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ { // provenance fields
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type productEmbeddingMUS struct{}

func (s productEmbeddingMUS) Marshal(v ProductEmbedding, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ProductId, bs)
	n += ord.String.Marshal(v.ModelVersion, bs[n:])
	n += marshalFloat32Slice(v.Vector, bs[n:])
	return n
}

func (s productEmbeddingMUS) Unmarshal(bs []byte) (v ProductEmbedding, n int, err error) {
	var n1 int
	v.ProductId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ModelVersion, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalFloat32Slice(bs[n:])
	n += n1
	return
}

func (s productEmbeddingMUS) Size(v ProductEmbedding) (size int) {
	size = IDMUS.Size(v.ProductId)
	size += ord.String.Size(v.ModelVersion)
	size += sizeFloat32Slice(v.Vector)
	return size
}

func (s productEmbeddingMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = skipFloat32Slice(bs[n:])
	n += n1
	return
}

// Optional float64 encodes as a presence flag followed by the raw value.

func marshalOptFloat64(v *float64, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v != nil {
		n += raw.Float64.Marshal(*v, bs[n:])
	}
	return n
}

func unmarshalOptFloat64(bs []byte) (v *float64, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	num, n1, err := raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	return &num, n, nil
}

func sizeOptFloat64(v *float64) (size int) {
	size = ord.Bool.Size(v != nil)
	if v != nil {
		size += raw.Float64.Size(*v)
	}
	return size
}

func skipOptFloat64(bs []byte) (n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return n, err
	}
	n1, err := raw.Float64.Skip(bs[n:])
	return n + n1, err
}

// Slices encode as a varint count followed by the elements. Empty slices
// decode to nil.

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	for i := range v {
		var n1 int
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func skipStringSlice(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	if length < 0 {
		return n, errNegativeLength
	}
	for i := 0; i < length; i++ {
		n1, err := ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func marshalFloat32Slice(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalFloat32Slice(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, errNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := range v {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeFloat32Slice(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func skipFloat32Slice(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	if length < 0 {
		return n, errNegativeLength
	}
	for i := 0; i < length; i++ {
		n1, err := raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

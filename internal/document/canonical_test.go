package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedNoEscaping(t *testing.T) {
	v := Object{
		"b": String("<tag> & more"),
		"a": Int(1),
	}

	got, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<tag> & more"}`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" as a precomposed code point vs combining sequence.
	precomposed := String("café")
	combining := String("café")

	a, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(combining)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "NFC normalization should unify the two forms")
}

func TestMarshalCanonical_Floats(t *testing.T) {
	got, err := MarshalCanonical(Float(0.5))
	require.NoError(t, err)
	assert.Equal(t, "0.5", string(got))

	got, err = MarshalCanonical(Float(1e21))
	require.NoError(t, err)
	assert.Equal(t, "1e+21", string(got))
}

func TestHashValue_StableAndDomainSeparated(t *testing.T) {
	v := Object{"name": String("Alice"), "age": Int(30)}

	h1, err := HashValue(DomainRecord, v)
	require.NoError(t, err)
	h2, err := HashValue(DomainRecord, Object{"age": Int(30), "name": String("Alice")})
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "key order must not affect the hash")

	h3, err := HashValue(DomainTable, v)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "different domains must produce different hashes")

	h4, err := HashValue(DomainRecord, Object{"name": String("Alice"), "age": Int(31)})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	require.Equal(t, HashPassword("pass1234"), HashPassword("pass1234"))
	require.NotEqual(t, HashPassword("pass1234"), HashPassword("pass12345"))
	require.Len(t, HashPassword("anything"), 64)
}

func TestHashPassword_KnownDigest(t *testing.T) {
	require.Equal(t,
		"5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		HashPassword("password"),
	)
}

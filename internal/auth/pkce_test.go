package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerifierLengthAndCharset(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		v, err := GenerateVerifier()
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(v), 43, "RFC 7636 lower bound")
		require.LessOrEqual(t, len(v), 128, "RFC 7636 upper bound")
		for _, c := range v {
			require.True(t,
				c == '-' || c == '_' ||
					(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'),
				"verifier must be base64url: got %q", c)
		}
		require.False(t, seen[v], "verifiers must not repeat")
		seen[v] = true
	}
}

func TestChallengeMatchesRFCVector(t *testing.T) {
	// RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", Challenge(verifier))
}

func TestChallengeHasNoPadding(t *testing.T) {
	v, err := GenerateVerifier()
	require.NoError(t, err)
	require.NotContains(t, Challenge(v), "=")
}

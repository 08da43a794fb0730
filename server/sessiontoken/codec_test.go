package sessiontoken_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/server/sessiontoken"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testRecord() credential.Record {
	return credential.Record{
		Principal:            credential.Principal{ID: "user-1", Name: "John Doe"},
		AccessToken:          "access-1",
		RefreshToken:         "refresh-1",
		AccessTokenExpiresAt: 1_700_000_000_000,
		Error:                credential.ErrorRefreshFailed,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := sessiontoken.NewCodec(testSecret, "session-keeper", time.Hour)
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(token, "."), "compact JWE has five segments")

	rec, err := codec.Decode(token)
	require.NoError(t, err)
	require.Equal(t, testRecord(), rec)
}

func TestCodec_TokenDoesNotExposeCredential(t *testing.T) {
	codec, err := sessiontoken.NewCodec(testSecret, "session-keeper", time.Hour)
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)
	require.NotContains(t, token, "refresh-1")

	segments := strings.Split(token, ".")
	header, err := base64.RawURLEncoding.DecodeString(segments[0])
	require.NoError(t, err)
	require.Contains(t, string(header), `"enc":"A256GCM"`)

	for _, segment := range segments {
		decoded, err := base64.RawURLEncoding.DecodeString(segment)
		require.NoError(t, err)
		require.NotContains(t, string(decoded), "refresh-1")
		require.NotContains(t, string(decoded), "access-1")
		require.NotContains(t, string(decoded), "John Doe")
	}
}

func TestCodec_RejectsModifiedCiphertext(t *testing.T) {
	codec, err := sessiontoken.NewCodec(testSecret, "session-keeper", time.Hour)
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	ciphertext, err := base64.RawURLEncoding.DecodeString(segments[3])
	require.NoError(t, err)
	ciphertext[0] ^= 0xff
	segments[3] = base64.RawURLEncoding.EncodeToString(ciphertext)

	_, err = codec.Decode(strings.Join(segments, "."))
	require.ErrorIs(t, err, errors.ErrInvalidSessionToken)
}

func TestCodec_RejectsTampering(t *testing.T) {
	codec, err := sessiontoken.NewCodec(testSecret, "session-keeper", time.Hour)
	require.NoError(t, err)
	other, err := sessiontoken.NewCodec(strings.Repeat("x", 32), "session-keeper", time.Hour)
	require.NoError(t, err)

	token, err := other.Encode(testRecord())
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, errors.ErrInvalidSessionToken)

	_, err = codec.Decode("not-a-token")
	require.ErrorIs(t, err, errors.ErrInvalidSessionToken)
}

func TestCodec_RejectsOtherIssuer(t *testing.T) {
	codec, err := sessiontoken.NewCodec(testSecret, "session-keeper", time.Hour)
	require.NoError(t, err)
	other, err := sessiontoken.NewCodec(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)

	token, err := other.Encode(testRecord())
	require.NoError(t, err)
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, errors.ErrInvalidSessionToken)
}

func TestCodec_Expiry(t *testing.T) {
	original := sessiontoken.NowTimeFunc
	t.Cleanup(func() { sessiontoken.NowTimeFunc = original })

	issued := time.Now()
	sessiontoken.NowTimeFunc = func() time.Time { return issued }

	codec, err := sessiontoken.NewCodec(testSecret, "", time.Minute)
	require.NoError(t, err)
	token, err := codec.Encode(testRecord())
	require.NoError(t, err)

	sessiontoken.NowTimeFunc = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, errors.ErrInvalidSessionToken)
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := sessiontoken.NewCodec("short", "", time.Hour)
	require.ErrorIs(t, err, errors.ErrMissingConfig)

	_, err = sessiontoken.NewCodec(testSecret, "", 0)
	require.ErrorIs(t, err, errors.ErrMissingConfig)
}

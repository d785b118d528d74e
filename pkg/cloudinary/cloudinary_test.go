package cloudinary

import (
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFolder(t *testing.T) {
	require.Equal(t, "nemesis/artworks", Folder("nemesis", "artworks"))
	require.Equal(t, "nemesis/avatars", Folder("/nemesis/", "/avatars/"))
	require.Equal(t, "events", Folder("", "events"))
	require.Equal(t, "nemesis", Folder("nemesis", ""))
}

func TestPublicIDIsSanitisedAndUnique(t *testing.T) {
	first := PublicID("My Painting (final).JPG")
	second := PublicID("My Painting (final).JPG")

	require.Regexp(t, regexp.MustCompile(`^my-painting--final-[0-9a-f]{8}$`), first)
	require.NotEqual(t, first, second)
	require.Regexp(t, regexp.MustCompile(`^upload-[0-9a-f]{8}$`), PublicID("???.png"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	svc, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "nemesis"}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, svc)
}

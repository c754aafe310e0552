package repositories

import (
	"testing"

	appconfig "github.com/freespaces/server/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestInitMediaRequiresConfig(t *testing.T) {
	require.Error(t, InitMedia(appconfig.R2Config{}))
	require.Error(t, InitMedia(appconfig.R2Config{AccountID: "acct"}))
	require.Error(t, InitMedia(appconfig.R2Config{BucketName: "bucket"}))

	require.NoError(t, InitMedia(appconfig.R2Config{
		AccountID:     "acct",
		BucketName:    "bucket",
		Region:        "auto",
		PublicBaseURL: "https://media.example/",
	}))
	require.Equal(t, "bucket", MediaBucket)
}

func TestMediaKeysAndURLs(t *testing.T) {
	require.NoError(t, InitMedia(appconfig.R2Config{
		AccountID:     "acct",
		BucketName:    "bucket",
		Region:        "auto",
		PublicBaseURL: "https://media.example/",
	}))

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Equal(t, "avatars/"+id.String()+".jpg", AvatarKey(id, ".jpg"))
	require.Equal(t, "post-images/"+id.String()+".png", FeaturedImageKey(id, ".png"))

	require.Equal(t, "https://media.example/avatars/x.jpg", MediaURL("avatars/x.jpg"))
	require.Equal(t, "", MediaURL(""))
}

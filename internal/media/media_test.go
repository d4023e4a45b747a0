package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expectError bool
	}{
		{name: "png", contentType: "image/png"},
		{name: "jpeg_with_params", contentType: "image/jpeg; charset=binary"},
		{name: "webp_upper", contentType: "IMAGE/WEBP"},
		{name: "gif", contentType: "image/gif", expectError: true},
		{name: "pdf", contentType: "application/pdf", expectError: true},
		{name: "empty", contentType: "", expectError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckContentType(tc.contentType)
			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrUnsupportedType))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPlaceholder_Upload(t *testing.T) {
	img, err := Placeholder{}.Upload(context.Background(), strings.NewReader("fake image"), FolderAuctions)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(img.PublicID, FolderAuctions+"/"))
	require.Empty(t, img.URL)
	require.NoError(t, Placeholder{}.Delete(context.Background(), img.PublicID))
}

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "delivery url with folder and version",
			url:  "https://res.cloudinary.com/demo/image/upload/v1700000000/craftstore/abc123.jpg",
			want: "abc123",
		},
		{
			name: "query string stripped",
			url:  "https://res.cloudinary.com/demo/image/upload/craftstore/abc123.png?_a=BAM",
			want: "abc123",
		},
		{
			name: "no extension",
			url:  "https://res.cloudinary.com/demo/image/upload/craftstore/abc123",
			want: "abc123",
		},
		{
			name: "bare public id",
			url:  "abc123",
			want: "abc123",
		},
		{
			name: "dotfile-like segment keeps its name",
			url:  "https://res.cloudinary.com/demo/image/upload/.hidden",
			want: ".hidden",
		},
		{
			name: "trailing slash",
			url:  "https://res.cloudinary.com/demo/image/upload/",
			want: "",
		},
		{
			name: "empty input",
			url:  "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PublicIDFromURL(tc.url))
		})
	}
}

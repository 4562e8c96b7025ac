package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/doctorcare/doctors/abc123.jpg": "abc123",
		"https://res.cloudinary.com/demo/image/upload/abc.def.png?x=1":                      "abc.def",
		"noext": "noext",
		"":      "",
		"/":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(in), in)
	}
}

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *Cloudinary {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, _ := test.NewNullLogger()
	c := NewCloudinary("demo", "key", "secret", "/doctorcare/doctors/", log)
	require.True(t, c.enabled())
	c.cld.Upload.Config.API.UploadPrefix = srv.URL
	return c
}

func TestUpload(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v1_1/demo/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/upload"), r.URL.Path)

		assert.Equal(t, "doctorcare/doctors", r.FormValue("folder"))
		assert.Equal(t, transformation, r.FormValue("transformation"))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.NotEmpty(t, r.FormValue("signature"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"doctorcare/doctors/p1","secure_url":"https://res.cloudinary.com/demo/image/upload/v1/doctorcare/doctors/p1.jpg"}`))
	})

	url, err := c.Upload(context.Background(), "portrait.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/doctorcare/doctors/p1.jpg", url)
}

func TestUploadError(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	})

	url, err := c.Upload(context.Background(), "x.txt", strings.NewReader("nope"))
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestDelete(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/destroy"), r.URL.Path)
		assert.Equal(t, "doctorcare/doctors/p1", r.FormValue("public_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})

	err := c.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v1/doctorcare/doctors/p1.jpg")
	assert.NoError(t, err)
}

func TestDeleteRejectsUnusableURL(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	assert.Error(t, c.Delete(context.Background(), "/"))
}

func TestDisabled(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := NewCloudinary("", "", "", "", log)

	_, err := c.Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrMediaDisabled)
	assert.ErrorIs(t, c.Delete(context.Background(), "https://x/y.jpg"), ErrMediaDisabled)
}

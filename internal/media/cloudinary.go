// Package media uploads and removes doctor portraits on Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// Portraits are cropped to this size on upload.
const transformation = "c_fill,h_600,w_500"

var ErrMediaDisabled = errors.New("media host is not configured")

// Store is the image host contract used by the doctor catalogue.
type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    logrus.FieldLogger
}

// NewCloudinary returns a client for the given account. Missing credentials
// yield a client whose calls fail with ErrMediaDisabled.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string, log logrus.FieldLogger) *Cloudinary {
	c := &Cloudinary{folder: strings.Trim(folder, "/"), log: log}
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return c
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		log.WithError(err).Warn("Cloudinary configuration rejected, image uploads disabled")
		return c
	}
	c.cld = cld
	return c
}

func (c *Cloudinary) enabled() bool {
	return c != nil && c.cld != nil
}

// PublicIDFromURL derives the asset id from a delivery URL: the last path
// segment without its extension.
func PublicIDFromURL(imageURL string) string {
	base := path.Base(strings.SplitN(imageURL, "?", 2)[0])
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Upload stores the image under the configured folder and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !c.enabled() {
		return "", ErrMediaDisabled
	}
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		Transformation: transformation,
	})
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("media upload failed: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("media upload returned no URL")
	}
	c.log.WithFields(logrus.Fields{"file": filename, "url": res.SecureURL}).Info("Doctor image uploaded")
	return res.SecureURL, nil
}

// Delete removes the image previously returned by Upload.
func (c *Cloudinary) Delete(ctx context.Context, imageURL string) error {
	if !c.enabled() {
		return ErrMediaDisabled
	}
	publicID := PublicIDFromURL(imageURL)
	if publicID == "" {
		return fmt.Errorf("cannot derive public id from %q", imageURL)
	}
	if c.folder != "" {
		publicID = c.folder + "/" + publicID
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("media destroy failed: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("media destroy failed: %s", res.Error.Message)
	}
	c.log.WithFields(logrus.Fields{"public_id": publicID, "result": res.Result}).Info("Doctor image deleted")
	return nil
}

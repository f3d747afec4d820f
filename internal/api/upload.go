package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/errs"
)

// uploadField is the multipart field holding comment attachments
const uploadField = "files"

// multipartOverhead covers the text fields sent next to the files
const multipartOverhead = 1 << 20

var allowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// uploadGuard rejects multipart bodies with too many files (400), files over
// the size ceiling (413) or content outside the allow list (415). The type is
// sniffed from the bytes. JSON bodies pass through untouched.
func uploadGuard(cfg config.UploadConfig) gin.HandlerFunc {
	maxBody := int64(cfg.MaxFiles)*cfg.MaxFileSize + multipartOverhead

	return func(c *gin.Context) {
		if c.ContentType() != binding.MIMEMultipartPOSTForm {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		if err := c.Request.ParseMultipartForm(multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abortWithError(c, errs.NewPayloadTooLargeError("Request body is too large"))
				return
			}
			abortWithError(c, errs.NewBadRequestError("Malformed multipart body", nil))
			return
		}

		files := c.Request.MultipartForm.File[uploadField]
		if len(files) > cfg.MaxFiles {
			abortWithError(c, errs.NewValidationError(uploadField, fmt.Sprintf("must not contain more than %d files", cfg.MaxFiles)))
			return
		}

		for _, fh := range files {
			if fh.Size > cfg.MaxFileSize {
				abortWithError(c, errs.NewPayloadTooLargeError(
					fmt.Sprintf("File %q exceeds the %d byte limit", fh.Filename, cfg.MaxFileSize)))
				return
			}

			mtype, err := sniff(fh)
			if err != nil {
				abortWithError(c, errs.NewBadRequestError(fmt.Sprintf("File %q could not be read", fh.Filename), nil))
				return
			}
			if !isAllowed(mtype) {
				abortWithError(c, errs.NewUnsupportedMediaTypeError(
					fmt.Sprintf("File %q has unsupported type %s", fh.Filename, mtype.String())))
				return
			}
		}

		c.Next()
	}
}

func sniff(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

// isAllowed walks the detected type and its parents; Is also matches aliases
func isAllowed(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, allowed := range allowedUploadTypes {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

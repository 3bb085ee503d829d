package api

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/example/fooddelivery/pkg/storage"
)

const imageFormField = "image"

// readImage reads the multipart image field. Reading stops one byte past the size limit
// so oversized files are rejected by validation without buffering them whole.
func readImage(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		return "", nil, fmt.Errorf("form field %q: %w", imageFormField, err)
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

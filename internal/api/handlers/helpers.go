package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

func parseTimeQuery(c *fiber.Ctx, name string) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, errors.New("missing time parameter")
	}
	return time.Parse(time.RFC3339, value)
}

func readUploadFiles(files []*multipart.FileHeader) ([]transfer.UploadFile, error) {
	uploads := make([]transfer.UploadFile, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, transfer.UploadFile{Name: file.Filename, Data: data})
	}
	return uploads, nil
}

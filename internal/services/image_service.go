package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ImageService handles property photo processing and storage
type ImageService struct {
	uploadDir string
}

func NewImageService(uploadDir string) *ImageService {
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		_ = os.MkdirAll(uploadDir, 0755)
	}
	return &ImageService{
		uploadDir: uploadDir,
	}
}

// ProcessAndSavePropertyPhoto saves the original photo and a listing
// thumbnail, returning both paths relative to the served upload root.
func (s *ImageService) ProcessAndSavePropertyPhoto(file multipart.File, header *multipart.FileHeader) (originalPath, thumbnailPath string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", "", fmt.Errorf("unsupported image format (JPG/PNG only)")
	}

	filename := uuid.New().String()
	originalFilename := filename + ext
	thumbFilename := filename + "_thumb" + ext

	img, _, err := image.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	// The original is streamed to disk untouched; decoding above only
	// validates it.
	if _, err := file.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}

	outOriginal, err := os.Create(filepath.Join(s.uploadDir, originalFilename))
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outOriginal.Close()

	if _, err := io.Copy(outOriginal, file); err != nil {
		return "", "", fmt.Errorf("failed to save original image: %w", err)
	}

	// Listing cards use a fixed 4:3 crop
	thumbImg := imaging.Fill(img, 400, 300, imaging.Center, imaging.Lanczos)

	outThumb, err := os.Create(filepath.Join(s.uploadDir, thumbFilename))
	if err != nil {
		return "", "", fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer outThumb.Close()

	if ext == ".png" {
		err = png.Encode(outThumb, thumbImg)
	} else {
		err = jpeg.Encode(outThumb, thumbImg, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/uploads/" + originalFilename, "/uploads/" + thumbFilename, nil
}

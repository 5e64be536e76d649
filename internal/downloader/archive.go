package downloader

import (
	"archive/zip"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExt = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
	"bmp":  "bmp",
	"tiff": "tiff",
}

// DetectImage reports the file extension matching the real content of path.
// It fails for anything that is not a decodable image header, such as an
// HTML error page saved in place of a picture.
func DetectImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", err
	}

	ext, ok := imageExt[format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}

	return ext, nil
}

// Archive packs pages 1..pageCount of the chapter named prefix from the
// workspace into one archive and moves it into destDir. Every page must be a
// real image; otherwise ErrFatal is returned and nothing reaches destDir.
func Archive(workspace, prefix string, pageCount int, destDir, format string) (string, error) {
	format = NormalizeFormat(format)
	name := prefix + format
	tmpPath := filepath.Join(workspace, name)

	_ = os.Remove(tmpPath)

	if err := writeArchive(workspace, prefix, pageCount, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	final := filepath.Join(destDir, name)
	if err := moveFile(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move archive: %w", err)
	}

	return final, nil
}

func writeArchive(workspace, prefix string, pageCount int, output string) (err error) {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	z := zip.NewWriter(out)
	for page := 1; page <= pageCount; page++ {
		src := filepath.Join(workspace, PageName(prefix, page))

		ext, derr := DetectImage(src)
		if derr != nil {
			_ = z.Close()
			return fmt.Errorf("%w: page %d of %s is not an image (%v); the site may be using anti-leeching measures",
				ErrFatal, page, prefix, derr)
		}

		if err := addFileToZip(z, src, PageName(prefix, page)+"."+ext); err != nil {
			_ = z.Close()
			return err
		}
	}

	return z.Close()
}

func addFileToZip(z *zip.Writer, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}

// moveFile renames src to dst, copying through a temporary file next to dst
// when the two are on different filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	part := dst + ".part"
	if err := copyFile(src, part); err != nil {
		_ = os.Remove(part)
		return err
	}
	if err := os.Rename(part, dst); err != nil {
		_ = os.Remove(part)
		return err
	}

	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}

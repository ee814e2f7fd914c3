package filesystem

import (
	"bufio"
	"context"
	"encoding/base64"
	"io"
	"os"
	"syscall"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// DefaultMaxReadBytes bounds whole-file reads
const DefaultMaxReadBytes int64 = 8 << 20

// maxLineBytes bounds a single line of a streamed read
const maxLineBytes = 1 << 20

// Reader reads file contents
type Reader struct {
	*Ops
	// MaxReadBytes limits ReadAll; zero means no limit
	MaxReadBytes int64
}

// ReadAll reads the whole file at path and detects its MIME type and, for
// text, its character set. Content that is not valid UTF-8 is returned
// base64 encoded. Files above MaxReadBytes are refused; use Lines
// for those.
func (r *Reader) ReadAll(path string) (Contents, error) {
	if err := requirePath("read", "path", path); err != nil {
		return Contents{}, err
	}

	full := r.Resolve(path)
	f, err := openRegular(full)
	if err != nil {
		return Contents{}, err
	}
	defer f.Close()

	var src io.Reader = f
	if r.MaxReadBytes > 0 {
		// Sizes under /proc are reported as zero, so the limit is enforced
		// on the bytes actually read.
		src = io.LimitReader(f, r.MaxReadBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return Contents{}, errs.FromIO("read", full, err)
	}
	if r.MaxReadBytes > 0 && int64(len(data)) > r.MaxReadBytes {
		return Contents{}, errs.Newf(errs.KindInvalidArgument, "read", full,
			"file exceeds %d bytes, use the streaming endpoint", r.MaxReadBytes)
	}

	mtype := mimetype.Detect(data)
	contents := Contents{
		Path:     path,
		Content:  string(data),
		Encoding: EncodingUTF8,
		Size:     int64(len(data)),
		MIMEType: mtype.String(),
		Charset:  detectCharset(data, mtype),
	}
	if !utf8.Valid(data) {
		// JSON strings cannot carry arbitrary bytes
		contents.Content = base64.StdEncoding.EncodeToString(data)
		contents.Encoding = EncodingBase64
	}
	return contents, nil
}

// Lines streams the file at path line by line, without line terminators.
// Streaming stops at the first error returned by fn.
func (r *Reader) Lines(ctx context.Context, path string, fn func(line string) error) error {
	if err := requirePath("read", "path", path); err != nil {
		return err
	}

	full := r.Resolve(path)
	f, err := openRegular(full)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return errs.FromIO("read", full, scanner.Err())
}

func openRegular(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.FromIO("open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.FromIO("stat", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, errs.New(errs.KindOther, "read", path, syscall.EISDIR)
	}
	return f, nil
}

// detectCharset guesses the encoding of text content. Binary content and
// undecidable input yield an empty string.
func detectCharset(data []byte, mtype *mimetype.MIME) string {
	if len(data) == 0 || !isText(mtype) {
		return ""
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

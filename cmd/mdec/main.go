// Command mdec decodes a PlayStation MDEC frame into an image file.
//
//	Usage: mdec [flags] <file or url> <width> <height>
//
// The input may be zstd compressed. The output format follows the extension of the output file
// (png, jpg, bmp or tif) unless -format is given.
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/jfbus/httprs"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	mdec "github.com/GreatGameDota/mdec-decompression"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func main() {
	output := flag.String("o", "output.png", "output file")
	format := flag.String("format", "", "output format: png, jpg, bmp or tif (default from output extension)")
	bigEndian := flag.Bool("be", false, "input words are big-endian")
	scale := flag.Int("scale", 1, "integer upscale factor")
	workers := flag.Int("workers", runtime.NumCPU(), "goroutines used for the inverse transform")
	verbose := flag.Bool("v", false, "print a summary")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file or url> <width> <height>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(1)
	}

	width, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		fmt.Println(errors.Wrap(err, "width"))
		os.Exit(1)
	}

	height, err := strconv.Atoi(flag.Arg(2))
	if err != nil {
		fmt.Println(errors.Wrap(err, "height"))
		os.Exit(1)
	}

	if *scale < 1 {
		fmt.Println("scale must be at least 1")
		os.Exit(1)
	}

	if *format == "" {
		*format = strings.TrimPrefix(strings.ToLower(filepath.Ext(*output)), ".")
	}

	opts := &mdec.Options{Workers: *workers}
	if *bigEndian {
		opts.ByteOrder = binary.BigEndian
	}

	start := time.Now()

	frame, err := decodeFile(flag.Arg(0), width, height, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var img image.Image = frame
	if *scale > 1 {
		img = upscale(frame, *scale)
	}

	err = writeImage(*output, *format, img)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("%s: %dx%d, %d macroblocks, truncated %v, %s\n",
			*output, img.Bounds().Dx(), img.Bounds().Dy(), frame.Macroblocks, frame.Truncated, time.Since(start))
	}
}

func decodeFile(name string, width, height int, opts *mdec.Options) (*mdec.Frame, error) {
	f, err := openFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open input file %s", name)
	}
	defer f.Close()

	r, closeFn, err := decompress(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read input file %s", name)
	}
	defer closeFn()

	frame, err := mdec.Decode(r, width, height, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode input file %s", name)
	}

	return frame, nil
}

// decompress returns a reader that decompresses zstd input and passes anything else through.
func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}

	if !bytes.Equal(magic, zstdMagic) {
		return br, func() {}, nil
	}

	zr, err := zstd.NewReader(br)
	if err != nil {
		return nil, nil, errors.Wrap(err, "zstd")
	}

	return zr, zr.Close, nil
}

func upscale(src image.Image, scale int) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}

func writeImage(name, format string, img image.Image) (err error) {
	w, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "could not create output file %s", name)
	}
	defer func() {
		if e := w.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "could not write output file %s", name)
		}
	}()

	bw := bufio.NewWriter(w)

	switch format {
	case "png":
		err = png.Encode(bw, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(bw, img, &jpeg.Options{Quality: 95})
	case "bmp":
		err = bmp.Encode(bw, img)
	case "tif", "tiff":
		err = tiff.Encode(bw, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "could not encode output file %s", name)
	}

	return errors.Wrapf(bw.Flush(), "could not write output file %s", name)
}

func openFile(arg string) (io.ReadSeekCloser, error) {
	var err error
	var r io.ReadSeekCloser

	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		res, err := http.Get(arg)
		if err != nil {
			return nil, err
		}

		r = httprs.NewHttpReadSeeker(res)
	} else {
		r, err = os.Open(arg)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

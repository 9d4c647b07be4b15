/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Log file rotation: gzip the current file into generation 0, shift
 * older generations up, drop whatever falls off the end.
 */

package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

func rotateGzip(file *os.File, path string, maxBackups uint) {
	prevpath := ""
	for i := maxBackups; ; i-- {
		nextpath := path
		if i > 0 {
			nextpath += fmt.Sprintf(".%d.gz", i-1)
		}

		switch i {
		case maxBackups:
			os.Remove(nextpath)
		case 0:
			if err := gzipFile(nextpath, prevpath); err == nil {
				file.Truncate(0)
				file.Seek(0, io.SeekStart)
			}
		default:
			os.Rename(nextpath, prevpath)
		}

		prevpath = nextpath
		if i == 0 {
			break
		}
	}
}

func gzipFile(ipath, opath string) error {
	ifile, err := os.Open(ipath)
	if err != nil {
		return err
	}
	defer ifile.Close()

	ofile, err := os.OpenFile(opath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	w := gzip.NewWriter(ofile)
	_, err = io.Copy(w, ifile)
	err2 := w.Close()
	err3 := ofile.Close()

	if err == nil {
		err = err2
	}
	if err == nil {
		err = err3
	}
	if err != nil {
		os.Remove(opath)
	}
	return err
}

package clusterlib

import (
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cardano-community/clusterlib-go/common"
)

const randChars = "abcdefghijklmnopqrstuvwxyz"

// RandStr returns a random ASCII lowercase string.
func RandStr(length int) string {
	if length < 1 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		b.WriteByte(randChars[rand.Intn(len(randChars))])
	}
	return b.String()
}

// PrependFlag prepends flag to every item of the contents.
//
//	PrependFlag("--foo", []string{"1", "2"}) -> ["--foo", "1", "--foo", "2"]
func PrependFlag(flag string, contents []string) []string {
	args := make([]string, 0, 2*len(contents))
	for _, c := range contents {
		args = append(args, flag, c)
	}
	return args
}

// CheckOutFiles checks that the expected output files were created.
func CheckOutFiles(outFiles ...string) error {
	for _, outFile := range outFiles {
		if !common.FileExist(common.ExpandHome(outFile)) {
			return errors.Errorf("the expected file `%v` doesn't exist", outFile)
		}
	}
	return nil
}

// ReadAddressFromFile reads an address stored in a file.
func ReadAddressFromFile(addrFile string) (string, error) {
	data, err := os.ReadFile(common.ExpandHome(addrFile))
	if err != nil {
		return "", errors.Wrapf(err, "read address file `%v`", addrFile)
	}
	return strings.TrimSpace(string(data)), nil
}

// checkFilesNotExist errors when output files already exist and overwriting
// is disabled.
func (c *ClusterLib) checkFilesNotExist(outFiles ...string) error {
	if c.OverwriteOutFiles {
		return nil
	}
	for _, outFile := range outFiles {
		if common.FileExist(common.ExpandHome(outFile)) {
			return errors.Errorf("the expected file `%v` already exists", outFile)
		}
	}
	return nil
}

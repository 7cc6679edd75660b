package utils

import (
	"crypto/md5"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
)

// GenUuidFromFields derives a stable uuid from the inputs in order. Each part
// is length-prefixed, so ("ab", "c") and ("a", "bc") differ.
func GenUuidFromFields(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return uuidHash([]byte(b.String()))
}

func uuidHash(b []byte) string {
	h := md5.New()

	h.Write(b)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

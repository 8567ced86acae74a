package util

import (
	"crypto/rand"
	"math/big"
)

const randomChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString generates a random string of the given length
// GetRandomString 生成指定长度的随机字符串
func GetRandomString(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(randomChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = randomChars[0]
			continue
		}
		b[i] = randomChars[n.Int64()]
	}
	return string(b)
}

package utils

import (
	"bufio"
	"github.com/twmb/murmur3"
	"os"
	"strings"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

func HashStringSeeded(s string, seed uint64) uint64 {
	hash := murmur3.SeedNew64(seed)
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

func HashStrings(ss []string) []uint64 {
	hash := murmur3.New64()

	hashes := make([]uint64, len(ss))
	for i, s := range ss {
		hash.Reset()
		_, err := hash.Write([]byte(s))
		if err != nil {
			panic(err)
		}
		hashes[i] = hash.Sum64()
	}

	return hashes
}

func AbsInt(n int) int {
	if n >= 0 {
		return n
	}

	return -n
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func ReadList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var result []string
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func ReadSet(filePath string) (map[string]bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	result := make(map[string]bool)
	for scanner.Scan() {
		result[strings.TrimSpace(scanner.Text())] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

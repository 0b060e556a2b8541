package main

import (
	"path"
	"strings"
)

var asciiArtCache = map[string]string{}

func getAsciiArt(fileName string) string {
	if _, ok := asciiArtCache[fileName]; !ok {
		asciiArtCache[fileName], _ = loadAsciiArt(fileName)
	}
	return asciiArtCache[fileName]
}

func loadAsciiArt(fileName string) (string, error) {
	file, err := readEmbeddedResourceFile(path.Join("ascii-art", fileName))
	if err != nil {
		return "fretsight", err
	}
	// \r characters mess up the lipgloss styles, such as borders
	return strings.TrimRight(strings.Replace(string(file), "\r", "", -1), "\n"), nil
}

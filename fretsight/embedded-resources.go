package main

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
)

//go:embed assets/*
var content embed.FS

const (
	demosDir    = "demos"
	defaultDemo = "lick"
)

func readEmbeddedResourceFile(filePath string) ([]byte, error) {
	return content.ReadFile(convertToResourcePath(filePath))
}

func readEmbeddedResourceDir(dirPath string) ([]fs.DirEntry, error) {
	return content.ReadDir(convertToResourcePath(dirPath))
}

// embed paths always use forward slashes
func convertToResourcePath(filePath string) string {
	return path.Join("assets", strings.Replace(filePath, "\\", "/", -1))
}

func listDemos() ([]string, error) {
	entries, err := readEmbeddedResourceDir(demosDir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names, nil
}

func loadDemoTranscription(name string) (*transcription, error) {
	if name == "" {
		name = defaultDemo
	}
	data, err := readEmbeddedResourceFile(path.Join(demosDir, name+".json"))
	if err != nil {
		names, _ := listDemos()
		return nil, errors.Errorf("no demo named %q (have %s)", name, strings.Join(names, ", "))
	}
	return ParsePayload(bytes.NewReader(data))
}

package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// idAlphabet excludes '-' so ids can be embedded in delimited payloads.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, 21)
}

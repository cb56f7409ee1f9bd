package gen

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// The grammar is built on first use.
var (
	goGrammar   *sitter.Language
	grammarOnce sync.Once
)

func grammar() *sitter.Language {
	grammarOnce.Do(func() {
		goGrammar = golang.GetLanguage()
	})
	return goGrammar
}

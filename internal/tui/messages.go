package tui

import (
	"github.com/matheuskafuri/hntop/internal/story"
)

type storiesLoadedMsg struct {
	stories []story.Story
}

type storiesErrMsg struct {
	err error
}

type openErrMsg struct {
	err error
}

package auth

import (
	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/practice"
)

var (
	_ practice.SessionContext = (*Sessions)(nil)
	_ api.TokenSource         = (*Sessions)(nil)
)

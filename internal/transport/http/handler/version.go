package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Build info, set via -ldflags at release time.
var (
	BuildVersion = "dev"
	BuildCommit  = "unknown"
)

type VersionHandler struct{}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

func (h *VersionHandler) Get(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"version": BuildVersion,
		"commit":  BuildCommit,
	})
}

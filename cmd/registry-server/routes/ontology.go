package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phenoxtractor/ontology-registry/internal/registry"
	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

// OntologyRoutes sets up the ontology registry routes.
func OntologyRoutes(api *gin.RouterGroup, reg registry.OntologyRegistry) {
	ontologies := api.Group("/ontologies")

	ontologies.GET("", handleList(reg))
	ontologies.POST("/:id/versions/:version/:type", handleRegister(reg))
	ontologies.GET("/:id/versions/:version/:type", handleDownload(reg))
	ontologies.DELETE("/:id/versions/:version/:type", handleUnregister(reg))
}

// requestKey extracts and validates the (id, version, type) triple from the
// route parameters. The id and version segments are never empty: requests
// with an empty path segment don't match the route.
func requestKey(c *gin.Context) (string, types.Version, types.FileType, bool) {
	fileType, err := types.ParseFileType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", types.Version{}, "", false
	}

	return c.Param("id"), types.ParseVersion(c.Param("version")), fileType, true
}

func handleRegister(reg registry.OntologyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, version, fileType, ok := requestKey(c)
		if !ok {
			return
		}

		path, err := reg.Register(c.Request.Context(), id, version, fileType)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"ontology_id": id,
			"version":     version.String(),
			"type":        string(fileType),
			"path":        path,
		})
	}
}

func handleDownload(reg registry.OntologyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, version, fileType, ok := requestKey(c)
		if !ok {
			return
		}

		path, found := reg.Get(c.Request.Context(), id, version, fileType)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "ontology not registered"})
			return
		}

		c.Header("Content-Type", fileType.ContentType())
		c.File(path)
	}
}

func handleUnregister(reg registry.OntologyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, version, fileType, ok := requestKey(c)
		if !ok {
			return
		}

		if err := reg.Unregister(c.Request.Context(), id, version, fileType); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func handleList(reg registry.OntologyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		files := reg.List()
		if files == nil {
			files = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"ontologies": files, "count": len(files)})
	}
}

// statusForError maps registry error kinds to HTTP statuses. Resolution and
// fetch failures point at the remote collaborators; everything else is a
// local registry fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrMetadataResolution):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrContentFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

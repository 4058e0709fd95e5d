package evidence

import (
	"itad/bizerror"
	"itad/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxEvidenceSize = 20 << 20

var (
	PathEvidences = "/v1/evidences"
)

func RegisterEvidencesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEvidences, middleWares...)
	g.POST("", handleUploadEvidence)
}

func handleUploadEvidence(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEvidenceSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer file.Close()

	ref, err := UploadEvidenceFunc(header.Filename, header.Header.Get("Content-Type"), file, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, ref)
}

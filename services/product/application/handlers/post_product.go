package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
	domainsvcs "github.com/ghuser/showcase/services/product/domain/services"
)

// maxSubmitBody bounds the whole multipart body: the image plus the text fields.
const maxSubmitBody = domainsvcs.MaxImageSize + 1<<20

// SubmitProductResponse is returned on successful submission.
type SubmitProductResponse struct {
	httpx.ActionResult
	Product ProductResponse `json:"product"`
} // @name SubmitProductResponse

// PostProductHandler handles POST /products requests.
type PostProductHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostProductHandler returns a PostProductHandler backed by the given services.
func NewPostProductHandler(svc *appsvcs.Services, log logger.Logger) *PostProductHandler {
	return &PostProductHandler{svc: svc, log: log}
}

// Execute submits a product for review.
//
//	@Summary		Submit product
//	@Description	Uploads the image and stores the product as pending. Requires a signed-in organization member.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Project name (3-50)"
//	@Param			slug		formData	string	true	"Slug (3-60, a-z 0-9 -)"
//	@Param			tagline		formData	string	true	"Tagline (5-100)"
//	@Param			description	formData	string	true	"Description (10-1000)"
//	@Param			web_url		formData	string	true	"Website URL"
//	@Param			tags		formData	[]string	true	"1-5 tags; repeated fields or one comma-separated value"	collectionFormat(multi)
//	@Param			image		formData	file	true	"PNG, JPEG or WebP, at most 5 MB"
//	@Success		201			{object}	SubmitProductResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Router			/products [post]
func (h *PostProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBody)
	if err := r.ParseMultipartForm(maxSubmitBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpx.JSONFail(w, http.StatusUnprocessableEntity, domainsvcs.MsgImageTooBig,
				map[string]string{"image": domainsvcs.MsgImageTooBig})
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	in := appsvcs.SubmitInput{
		Name:        r.FormValue("name"),
		Slug:        r.FormValue("slug"),
		Tagline:     r.FormValue("tagline"),
		Description: r.FormValue("description"),
		WebURL:      r.FormValue("web_url"),
		Tags:        formTags(r.MultipartForm.Value["tags"]),
	}

	img, err := readImage(r)
	if err != nil {
		h.log.WarnContext(r.Context(), "failed to read uploaded image", "error", err)
		httpx.JSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	in.Image = img

	p, err := h.svc.Mutation.SubmitProduct(r.Context(), auth.CallerFromCtx(r.Context()), in)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, SubmitProductResponse{
		ActionResult: httpx.Succeeded(appsvcs.MsgSubmitted),
		Product:      toProductResponse(p),
	})
}

// readImage returns the "image" part, or nil when the form has none.
// At most MaxImageSize+1 bytes are kept so oversize files are still reported as such.
func readImage(r *http.Request) (*appsvcs.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, domainsvcs.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	return &appsvcs.ImageUpload{
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Data:         data,
		Size:         header.Size,
	}, nil
}

// formTags accepts tags as repeated fields or as a single comma-separated value.
func formTags(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		tags = append(tags, strings.TrimSpace(v))
	}
	return tags
}

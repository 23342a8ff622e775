package main

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/compose"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/ocr"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/wizard"
)

const maxUploadBytes = 10 * 1024 * 1024

// securePortalURL is opened by the client after submission; nothing is
// transmitted to it programmatically.
const securePortalURL = "https://secure.tbstaxservices.com/upload"

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/logout", logoutHandler)
	authGroup.GET("/account", getAccountHandler)
	authGroup.POST("/account/save", saveAccountHandler)
	authGroup.PUT("/account/taxpayer", updateTaxpayerHandler)
	authGroup.PUT("/account/spouse", updateSpouseHandler)
	authGroup.PUT("/account/filing", updateFilingHandler)
	authGroup.PUT("/account/bank", updateBankHandler)
	authGroup.PUT("/account/signatures", updateSignaturesHandler)
	authGroup.PUT("/account/acceptance", updateAcceptanceHandler)
	authGroup.POST("/account/dependents", addDependentHandler)
	authGroup.DELETE("/account/dependents/:id", removeDependentHandler)
	authGroup.GET("/wizard", wizardStateHandler)
	authGroup.POST("/wizard/next", wizardNextHandler)
	authGroup.POST("/wizard/back", wizardBackHandler)
	authGroup.POST("/uploads/slot/:slot", uploadSlotHandler)
	authGroup.POST("/uploads/income", uploadIncomeDocsHandler)
	authGroup.GET("/categories/:kind", listCategoriesHandler)
	authGroup.POST("/categories/:kind/select", selectCategoryHandler)
	authGroup.POST("/categories/:kind/deselect", deselectCategoryHandler)
	authGroup.PUT("/categories/:kind/detail", categoryDetailHandler)
	authGroup.POST("/categories/:kind/files", categoryFilesHandler)
	authGroup.POST("/submit", submitHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("email", email)
		c.Next()
	}
}

// sessionEmail returns the authenticated email and lazily restores the
// session from the store after a server restart.
func sessionEmail(c *gin.Context) (string, bool) {
	v, _ := c.Get("email")
	email, _ := v.(string)
	if email == "" {
		return "", false
	}
	restored := sessions.with(email, func(s *session) {})
	if !restored {
		rec, found, err := accounts.Load(email)
		if err != nil {
			log.Printf("WARN reload failed for %s: %v", email, err)
		}
		if rec == nil || !found {
			rec = models.NewAccountRecord(email)
		}
		rec.StepIndex = wizard.Clamp(rec.StepIndex)
		sessions.attach(email, rec)
	}
	return email, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterAccount(req.Email, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Authenticate(req.Email, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	email := normalizeEmail(req.Email)
	rec, found, err := accounts.Load(email)
	if err != nil {
		// Store trouble is not a login failure; start from a blank in-memory
		// record and let autosave catch up.
		log.Printf("WARN load failed for %s: %v", email, err)
	}
	if rec == nil || !found {
		rec = models.NewAccountRecord(email)
	}
	rec.StepIndex = wizard.Clamp(rec.StepIndex)
	sessions.attach(email, rec)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "login successful",
		"token":      tokenString,
		"step_index": rec.StepIndex,
		"step_name":  wizard.Name(rec.StepIndex),
	})
}

func meHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

// logoutHandler is save-then-clear-session. It succeeds even when the final
// save does not.
func logoutHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	saved := sessions.save(email, accounts)
	sessions.detach(email)
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "saved": saved})
}

func getAccountHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	sessions.with(email, func(s *session) {
		c.JSON(http.StatusOK, s.record)
	})
}

func saveAccountHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": sessions.save(email, accounts)})
}

func updateTaxpayerHandler(c *gin.Context) {
	replacePerson(c, func(rec *models.AccountRecord, p models.PersonInfo) { rec.Taxpayer = p })
}

func updateSpouseHandler(c *gin.Context) {
	replacePerson(c, func(rec *models.AccountRecord, p models.PersonInfo) { rec.Spouse = p })
}

// replacePerson binds a full PersonInfo and swaps the whole block; there are
// no partial field updates.
func replacePerson(c *gin.Context, assign func(rec *models.AccountRecord, p models.PersonInfo)) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var p models.PersonInfo
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) { assign(rec, p) })
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func updateFilingHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var req struct {
		FilingJointly bool `json:"filing_jointly"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) { rec.FilingJointly = req.FilingJointly })
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func updateBankHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var b models.BankInfo
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) { rec.Bank = b })
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func updateSignaturesHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var req struct {
		Signature       string `json:"signature"`
		SpouseSignature string `json:"spouse_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) {
		rec.Signature = req.Signature
		rec.SpouseSignature = req.SpouseSignature
	})
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func updateAcceptanceHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var req struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) { rec.Accepted = req.Accepted })
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func addDependentHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var req struct {
		Name         string `json:"name" binding:"required"`
		DateOfBirth  string `json:"date_of_birth"`
		TaxID        string `json:"tax_id"`
		Relationship string `json:"relationship"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dep := models.NewDependent(req.Name, req.DateOfBirth, req.TaxID, req.Relationship)
	sessions.mutate(email, func(rec *models.AccountRecord) {
		rec.Dependents = append(rec.Dependents, dep)
	})
	c.JSON(http.StatusOK, gin.H{"id": dep.ID})
}

func removeDependentHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	id := c.Param("id")
	removed := false
	sessions.mutate(email, func(rec *models.AccountRecord) {
		kept := rec.Dependents[:0]
		for _, d := range rec.Dependents {
			if d.ID == id {
				removed = true
				continue
			}
			kept = append(kept, d)
		}
		rec.Dependents = kept
	})
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "dependent not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

func wizardStateHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	sessions.with(email, func(s *session) {
		c.JSON(http.StatusOK, gin.H{
			"step_index": s.record.StepIndex,
			"step_name":  wizard.Name(s.record.StepIndex),
			"last_step":  wizard.LastStep(),
			"steps":      wizard.Steps,
		})
	})
}

func wizardNextHandler(c *gin.Context) {
	stepTransition(c, func(rec *models.AccountRecord) int {
		return wizard.Advance(rec.StepIndex, rec.Accepted)
	})
}

func wizardBackHandler(c *gin.Context) {
	stepTransition(c, func(rec *models.AccountRecord) int {
		return wizard.Back(rec.StepIndex)
	})
}

func stepTransition(c *gin.Context, next func(rec *models.AccountRecord) int) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	var idx int
	var moved bool
	sessions.mutate(email, func(rec *models.AccountRecord) {
		prev := rec.StepIndex
		rec.StepIndex = next(rec)
		idx = rec.StepIndex
		moved = idx != prev
	})
	c.JSON(http.StatusOK, gin.H{
		"step_index": idx,
		"step_name":  wizard.Name(idx),
		"moved":      moved,
	})
}

// readUpload pulls one multipart file fully into memory and resolves its
// declared MIME type, sniffing when the client sent none.
func readUpload(fh *multipart.FileHeader) (string, string, []byte, error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		n := len(data)
		if n > 512 {
			n = 512
		}
		ct = http.DetectContentType(data[:n])
	}
	return fh.Filename, ct, data, nil
}

// uploadSlotHandler fills one of the four singleton document slots. A PDF
// normalizes to multiple page records; the slot keeps the first.
func uploadSlotHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	slot := c.Param("slot")
	switch slot {
	case "primary_license", "spouse_license", "prior_return", "pin_letter":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown slot"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	name, ct, data, err := readUpload(fh)
	if err != nil {
		log.Printf("WARN read upload %s: %v", fh.Filename, err)
		c.JSON(http.StatusOK, gin.H{"uploaded": 0})
		return
	}
	files, err := normalizer.Normalize(name, ct, data)
	if err != nil {
		log.Printf("WARN normalize %s: %v", name, err)
		c.JSON(http.StatusOK, gin.H{"uploaded": 0})
		return
	}
	first := files[0]
	sessions.mutate(email, func(rec *models.AccountRecord) {
		switch slot {
		case "primary_license":
			rec.Uploads.PrimaryLicense = &first
		case "spouse_license":
			rec.Uploads.SpouseLicense = &first
		case "prior_return":
			rec.Uploads.PriorReturn = &first
		case "pin_letter":
			rec.Uploads.PinLetter = &first
		}
	})
	c.JSON(http.StatusOK, gin.H{"uploaded": 1, "name": first.Name})
}

// uploadIncomeDocsHandler appends general income documents. Files are
// normalized strictly one at a time; a failing file is logged and skipped,
// never an error to the client.
func uploadIncomeDocsHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	uploaded := normalizeAll(form.File["files"])
	if len(uploaded) > 0 {
		sessions.mutate(email, func(rec *models.AccountRecord) {
			rec.Uploads.IncomeDocs = append(rec.Uploads.IncomeDocs, uploaded...)
		})
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": len(uploaded)})
}

// normalizeAll runs the sequential upload pipeline: each file is fully
// normalized before the next begins. No files selected is a no-op.
func normalizeAll(fhs []*multipart.FileHeader) []models.UploadedFile {
	var out []models.UploadedFile
	for _, fh := range fhs {
		if fh.Size > maxUploadBytes {
			log.Printf("WARN skipping oversized upload %s (%d bytes)", fh.Filename, fh.Size)
			continue
		}
		name, ct, data, err := readUpload(fh)
		if err != nil {
			log.Printf("WARN read upload %s: %v", fh.Filename, err)
			continue
		}
		files, err := normalizer.Normalize(name, ct, data)
		if err != nil {
			log.Printf("WARN normalize %s: %v", name, err)
			continue
		}
		out = append(out, files...)
	}
	return out
}

func listCategoriesHandler(c *gin.Context) {
	catalog := models.Catalog(c.Param("kind"))
	if catalog == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category kind"})
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func selectCategoryHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	kind := c.Param("kind")
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, known := models.CategoryLabel(kind, req.Category); !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) {
		list := rec.CategoryList(kind)
		for i := range *list {
			if (*list)[i].Category == req.Category {
				(*list)[i].Selected = true
				return
			}
		}
		*list = append(*list, models.CategorizedDocument{
			Category: req.Category,
			Selected: true,
			Files:    []models.UploadedFile{},
		})
	})
	c.JSON(http.StatusOK, gin.H{"message": "selected"})
}

// deselectCategoryHandler clears the selection. An untouched entry (no files,
// no detail) is removed outright; one with uploads is kept unselected so the
// files survive a stray click.
func deselectCategoryHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	kind := c.Param("kind")
	if models.Catalog(kind) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category kind"})
		return
	}
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessions.mutate(email, func(rec *models.AccountRecord) {
		list := rec.CategoryList(kind)
		kept := (*list)[:0]
		for _, cd := range *list {
			if cd.Category == req.Category {
				if len(cd.Files) == 0 && cd.Detail == "" {
					continue
				}
				cd.Selected = false
			}
			kept = append(kept, cd)
		}
		*list = kept
	})
	c.JSON(http.StatusOK, gin.H{"message": "deselected"})
}

func categoryDetailHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	kind := c.Param("kind")
	var req struct {
		Category string `json:"category" binding:"required"`
		Detail   string `json:"detail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found := false
	sessions.mutate(email, func(rec *models.AccountRecord) {
		list := rec.CategoryList(kind)
		if list == nil {
			return
		}
		for i := range *list {
			if (*list)[i].Category == req.Category {
				(*list)[i].Detail = req.Detail
				found = true
				return
			}
		}
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not selected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// categoryFilesHandler attaches normalized uploads to a selected category.
// For income documents an OCR hint may prefill an empty detail field.
func categoryFilesHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	kind := c.Param("kind")
	if models.Catalog(kind) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category kind"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	category := c.PostForm("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category required"})
		return
	}

	fhs := form.File["files"]
	var firstImageRaw []byte
	for _, fh := range fhs {
		if _, ct, data, err := readUpload(fh); err == nil && strings.HasPrefix(ct, "image/") {
			firstImageRaw = data
			break
		}
	}
	uploaded := normalizeAll(fhs)

	found := false
	detailEmpty := false
	sessions.mutate(email, func(rec *models.AccountRecord) {
		list := rec.CategoryList(kind)
		for i := range *list {
			if (*list)[i].Category == category && (*list)[i].Selected {
				(*list)[i].Files = append((*list)[i].Files, uploaded...)
				detailEmpty = (*list)[i].Detail == ""
				found = true
				return
			}
		}
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not selected"})
		return
	}

	if kind == models.KindIncome && detailEmpty && ocrHintsEnabled() && firstImageRaw != nil {
		if amt, err := ocr.AmountHint(firstImageRaw); err == nil {
			sessions.mutate(email, func(rec *models.AccountRecord) {
				list := rec.CategoryList(kind)
				for i := range *list {
					if (*list)[i].Category == category && (*list)[i].Detail == "" {
						(*list)[i].Detail = formatDollars(amt)
						return
					}
				}
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": len(uploaded)})
}

func ocrHintsEnabled() bool {
	return os.Getenv("OCR_HINTS") == "1"
}

// formatDollars renders whole dollars with thousands separators.
func formatDollars(v int64) string {
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	b.WriteByte('$')
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// submitHandler composes the printable document. Submission metadata is
// minted once per session and reused on a re-submit.
func submitHandler(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing email"})
		return
	}
	meta, ok := sessions.ensureMeta(email)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	var doc, filename string
	var composeErr error
	now := time.Now()
	sessions.with(email, func(s *session) {
		doc, composeErr = compose.Compose(s.record, meta, now)
		filename = compose.Filename(s.record, now)
	})
	if composeErr != nil {
		log.Printf("ERROR compose for %s: %v", email, composeErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compose document"})
		return
	}
	// Submission is also an explicit save trigger.
	sessions.save(email, accounts)
	c.JSON(http.StatusOK, gin.H{
		"reference":    meta.Reference,
		"submitted_at": meta.SubmittedAt.Format(time.RFC3339),
		"filename":     filename,
		"document":     doc,
		"portal_url":   securePortalURL,
	})
}

package contact

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxImportBytes = 5 << 20

type CreateContactRequest struct {
	AgentID   *uint  `json:"agent_id"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=150"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=255"`
	Suburb    string `json:"suburb" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=2000"`
}

type UpdateContactRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	Suburb    *string `json:"suburb" validate:"omitempty,max=100"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

type ImportResponse struct {
	Batch    string     `json:"batch"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

func (req UpdateContactRequest) apply(ct *models.Contact) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&ct.FirstName, req.FirstName)
	set(&ct.LastName, req.LastName)
	set(&ct.Phone, req.Phone)
	set(&ct.Address, req.Address)
	set(&ct.Suburb, req.Suburb)
	set(&ct.Notes, req.Notes)
	if req.Email != nil {
		ct.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
}

func record(c *fiber.Ctx, action models.AuditAction, ct models.Contact, desc string, before, after any) {
	userID, userName, err := auth.UserInfo(c)
	if err != nil {
		return
	}
	agentID := ct.AgentID
	audit.Record(audit.LogOptions{
		AgentID:     &agentID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  audit.EntityContact,
		EntityID:    ct.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

func fullName(ct models.Contact) string {
	return strings.TrimSpace(ct.FirstName + " " + ct.LastName)
}

func find(c *fiber.Ctx) (models.Contact, error) {
	var ct models.Contact
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ct, fiber.NewError(fiber.StatusBadRequest, "Invalid contact id")
	}
	if err := database.DB.First(&ct, "id = ?", id).Error; err != nil {
		return ct, fiber.NewError(fiber.StatusNotFound, "Contact not found")
	}
	if err := auth.CanAccess(c, ct.AgentID); err != nil {
		return ct, err
	}
	return ct, nil
}

func listQuery(c *fiber.Ctx) (*gorm.DB, error) {
	agentID, err := auth.AgentFilter(c)
	if err != nil {
		return nil, err
	}
	dbq := database.DB.Model(&models.Contact{})
	if agentID != nil {
		dbq = dbq.Where("agent_id = ?", *agentID)
	}
	if s := strings.TrimSpace(c.Query("suburb")); s != "" {
		dbq = dbq.Where("LOWER(suburb) = ?", strings.ToLower(s))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		dbq = dbq.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like, like)
	}
	if b := c.Query("batch"); b != "" {
		dbq = dbq.Where("import_batch = ?", b)
	}
	return dbq, nil
}

// POST /api/contacts
func CreateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateContactRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		agentID, err := auth.ResolveAgentID(c, body.AgentID)
		if err != nil {
			return err
		}

		ct := models.Contact{
			AgentID:   agentID,
			FirstName: strings.TrimSpace(body.FirstName),
			LastName:  strings.TrimSpace(body.LastName),
			Email:     strings.ToLower(strings.TrimSpace(body.Email)),
			Phone:     strings.TrimSpace(body.Phone),
			Address:   strings.TrimSpace(body.Address),
			Suburb:    strings.TrimSpace(body.Suburb),
			Notes:     strings.TrimSpace(body.Notes),
		}
		if err := database.DB.Create(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save contact")
		}

		record(c, models.AuditActionCreate, ct, fmt.Sprintf("Contact added: %s", fullName(ct)), nil, ct)
		return c.Status(fiber.StatusCreated).JSON(ct)
	}
}

// GET /api/contacts?agent_id=&suburb=&q=&batch=
func ListContactsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := listQuery(c)
		if err != nil {
			return err
		}
		var list []models.Contact
		if err := dbq.Order("last_name ASC, first_name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list contacts")
		}
		return c.JSON(list)
	}
}

// GET /api/contacts/:id
func GetContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ct, err := find(c)
		if err != nil {
			return err
		}
		return c.JSON(ct)
	}
}

// PUT /api/contacts/:id
func UpdateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ct, err := find(c)
		if err != nil {
			return err
		}
		var body UpdateContactRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}

		before := ct
		body.apply(&ct)
		if err := database.DB.Save(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update contact")
		}

		record(c, models.AuditActionUpdate, ct, fmt.Sprintf("Contact updated: %s", fullName(ct)), before, ct)
		return c.JSON(ct)
	}
}

// DELETE /api/contacts/:id
func DeleteContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ct, err := find(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(&models.Contact{}, "id = ?", ct.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete contact")
		}

		record(c, models.AuditActionDelete, ct, fmt.Sprintf("Contact deleted: %s", fullName(ct)), ct, nil)
		return c.JSON(fiber.Map{"message": "Contact deleted"})
	}
}

// readUpload accepts either a multipart "file" field (.csv or .xlsx) or a
// raw text/csv body. It reports whether the upload is a workbook.
func readUpload(c *fiber.Ctx) ([]byte, bool, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxImportBytes {
			return nil, false, fiber.NewError(fiber.StatusRequestEntityTooLarge, "File is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, false, fiber.NewError(fiber.StatusBadRequest, "Could not read file")
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxImportBytes))
		if err != nil {
			return nil, false, fiber.NewError(fiber.StatusBadRequest, "Could not read file")
		}
		return raw, strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx"), nil
	}
	body := c.Body()
	if len(body) == 0 {
		return nil, false, fiber.NewError(fiber.StatusBadRequest, "CSV or XLSX file is required")
	}
	if len(body) > maxImportBytes {
		return nil, false, fiber.NewError(fiber.StatusRequestEntityTooLarge, "File is too large")
	}
	return body, false, nil
}

// POST /api/contacts/import?agent_id=
func ImportContactsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID, err := auth.ResolveAgentIDFromQuery(c)
		if err != nil {
			return err
		}
		raw, isXLSX, err := readUpload(c)
		if err != nil {
			return err
		}

		parse := ParseCSV
		if isXLSX {
			parse = ParseXLSX
		}
		contacts, rowErrs, err := parse(bytes.NewReader(raw))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if rowErrs == nil {
			rowErrs = []RowError{}
		}
		if len(contacts) == 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ImportResponse{Errors: rowErrs})
		}

		batch := uuid.NewString()
		for i := range contacts {
			contacts[i].AgentID = agentID
			contacts[i].ImportBatch = &batch
		}
		if err := database.DB.CreateInBatches(&contacts, 200).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not import contacts")
		}

		userID, userName, err := auth.UserInfo(c)
		if err == nil {
			audit.Record(audit.LogOptions{
				AgentID:     &agentID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  audit.EntityContact,
				Action:      models.AuditActionImport,
				Description: fmt.Sprintf("Imported %d contacts (batch %s, %d rows rejected)", len(contacts), batch, len(rowErrs)),
				After:       fiber.Map{"batch": batch, "count": len(contacts)},
			})
		}

		return c.Status(fiber.StatusCreated).JSON(ImportResponse{
			Batch:    batch,
			Imported: len(contacts),
			Errors:   rowErrs,
		})
	}
}

// DELETE /api/contacts/import/:batch
func DeleteImportBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batch, err := uuid.Parse(c.Params("batch"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid batch id")
		}
		agentID, err := auth.AgentFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("import_batch = ?", batch.String())
		if agentID != nil {
			dbq = dbq.Where("agent_id = ?", *agentID)
		}
		res := dbq.Delete(&models.Contact{})
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete batch")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Batch not found")
		}

		userID, userName, err := auth.UserInfo(c)
		if err == nil {
			audit.Record(audit.LogOptions{
				AgentID:     agentID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  audit.EntityContact,
				Action:      models.AuditActionBatchDelete,
				Description: fmt.Sprintf("Import batch %s removed (%d contacts)", batch, res.RowsAffected),
				Before:      fiber.Map{"batch": batch.String(), "count": res.RowsAffected},
			})
		}
		return c.JSON(fiber.Map{"deleted": res.RowsAffected})
	}
}

// GET /api/contacts/export?agent_id=&suburb=&q=&batch=
func ExportContactsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := listQuery(c)
		if err != nil {
			return err
		}
		var list []models.Contact
		if err := dbq.Order("last_name ASC, first_name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list contacts")
		}

		var buf bytes.Buffer
		if err := WriteCSV(&buf, list); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not write CSV")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="contacts.csv"`)
		return c.Send(buf.Bytes())
	}
}

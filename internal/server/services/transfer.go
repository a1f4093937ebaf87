package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
	"github.com/agahlya1812/memoboost/internal/server/tree"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	ExportVersion = "1.0"

	unknownFolderName = "Unknown"
)

var csvHeader = []string{"Question", "Answer", "Folder", "Mastery status", "Created at", "Updated at"}

// Export is the JSON document produced by an export and accepted by an import.
type Export struct {
	Version    string           `json:"version"`
	ExportDate time.Time        `json:"exportDate"`
	Cards      []ExportCard     `json:"cards"`
	Categories []ExportCategory `json:"categories"`
}

type ExportCard struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	CategoryID    string    `json:"categoryId"`
	MasteryStatus string    `json:"masteryStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ExportCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImportResult counts what an import created and what it had to skip.
type ImportResult struct {
	Categories int `json:"categories"`
	Cards      int `json:"cards"`
	Skipped    int `json:"skipped"`
}

type TransferService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTransferService(m repomanager.RepositoryManager, log logging.Logger) *TransferService {
	return &TransferService{repomanager: m, log: log.With("module", "transfer")}
}

// ContentType returns the media type of an export in format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

func checkFormat(format string) error {
	if format != FormatJSON && format != FormatCSV {
		return invalid(fmt.Sprintf("unsupported format %q", format))
	}
	return nil
}

// Export serialises all of the user's folders and cards.
func (s *TransferService) Export(ctx context.Context, userID, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var (
		categories []models.Category
		cards      []models.Card
	)
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		if categories, err = r.Categories().ListByUser(ctx, userID); err != nil {
			return err
		}
		cards, err = r.Cards().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	if format == FormatCSV {
		return encodeCSV(categories, cards)
	}
	return encodeJSON(categories, cards)
}

func encodeJSON(categories []models.Category, cards []models.Card) ([]byte, error) {
	doc := Export{
		Version:    ExportVersion,
		ExportDate: now(),
		Cards:      make([]ExportCard, 0, len(cards)),
		Categories: make([]ExportCategory, 0, len(categories)),
	}
	for _, c := range cards {
		doc.Cards = append(doc.Cards, ExportCard{
			ID:            c.ID,
			Question:      c.Question,
			Answer:        c.Answer,
			CategoryID:    c.CategoryID,
			MasteryStatus: string(models.NormalizeStatus(string(c.MasteryStatus), models.StatusUnknown)),
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	for _, c := range categories {
		doc.Categories = append(doc.Categories, ExportCategory{
			ID:        c.ID,
			Name:      c.Name,
			ParentID:  c.ParentID,
			Color:     string(c.Color),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeCSV(categories []models.Category, cards []models.Card) ([]byte, error) {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, c := range cards {
		folder, ok := names[c.CategoryID]
		if !ok {
			folder = unknownFolderName
		}
		record := []string{
			c.Question,
			c.Answer,
			folder,
			string(models.NormalizeStatus(string(c.MasteryStatus), models.StatusUnknown)),
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// importCard is a card row after parsing, before its folder is resolved.
// Exactly one of categoryID and folderName is set.
type importCard struct {
	question   string
	answer     string
	status     string
	categoryID string
	folderName string
}

// Import reads a JSON or CSV export and creates its folders and cards for
// the user. Everything is written in one transaction; rows that cannot be
// placed are skipped and counted.
func (s *TransferService) Import(ctx context.Context, userID, format string, src io.Reader) (*ImportResult, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var (
		folders []ExportCategory
		rows    []importCard
		err     error
	)
	if format == FormatCSV {
		rows, err = decodeCSV(src)
	} else {
		folders, rows, err = decodeJSON(src)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		*result = ImportResult{}
		if err := r.LockOwner(ctx, userID); err != nil {
			return err
		}

		imp := &importer{r: r, userID: userID, result: result}
		if err := imp.load(ctx); err != nil {
			return err
		}

		idMap, err := imp.createTree(ctx, folders)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if strings.TrimSpace(row.question) == "" || strings.TrimSpace(row.answer) == "" {
				result.Skipped++
				continue
			}
			categoryID, err := imp.resolveFolder(ctx, row, idMap)
			if err != nil {
				return err
			}
			if categoryID == "" {
				result.Skipped++
				continue
			}
			if err := imp.createCard(ctx, row, categoryID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.log.Info(ctx, "import finished", "user_id", userID, "format", format,
		"folders", result.Categories, "cards", result.Cards, "skipped", result.Skipped)
	return result, nil
}

func decodeJSON(src io.Reader) ([]ExportCategory, []importCard, error) {
	// Timestamps are not read back.
	var doc struct {
		Cards *[]struct {
			Question      string `json:"question"`
			Answer        string `json:"answer"`
			CategoryID    string `json:"categoryId"`
			MasteryStatus string `json:"masteryStatus"`
		} `json:"cards"`
		Categories *[]struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			ParentID *string `json:"parentId"`
			Color    string  `json:"color"`
		} `json:"categories"`
	}
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, nil, invalid("invalid JSON import: " + err.Error())
	}
	if doc.Cards == nil {
		return nil, nil, invalid(`invalid JSON import: "cards" is missing`)
	}
	if doc.Categories == nil {
		return nil, nil, invalid(`invalid JSON import: "categories" is missing`)
	}

	rows := make([]importCard, 0, len(*doc.Cards))
	for _, c := range *doc.Cards {
		rows = append(rows, importCard{
			question:   c.Question,
			answer:     c.Answer,
			status:     c.MasteryStatus,
			categoryID: c.CategoryID,
		})
	}
	folders := make([]ExportCategory, 0, len(*doc.Categories))
	for _, c := range *doc.Categories {
		folders = append(folders, ExportCategory{ID: c.ID, Name: c.Name, ParentID: c.ParentID, Color: c.Color})
	}
	return folders, rows, nil
}

// csvColumns maps header names, in English or French, to column kinds.
var csvColumns = map[string][]string{
	"question": {"question"},
	"answer":   {"answer", "réponse", "reponse"},
	"folder":   {"folder", "dossier"},
	"status":   {"status", "statut"},
}

func decodeCSV(src io.Reader) ([]importCard, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("CSV import needs a header and at least one row")
		}
		return nil, invalid("invalid CSV import: " + err.Error())
	}

	index := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for kind, names := range csvColumns {
			if _, done := index[kind]; done {
				continue
			}
			for _, name := range names {
				if strings.Contains(h, name) {
					index[kind] = i
					break
				}
			}
		}
	}

	var missing []string
	for _, kind := range []string{"question", "answer", "folder", "status"} {
		if _, ok := index[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("CSV header is missing: " + strings.Join(missing, ", "))
	}

	field := func(record []string, kind string) string {
		i := index[kind]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []importCard
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("invalid CSV import: " + err.Error())
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, importCard{
			question:   field(record, "question"),
			answer:     field(record, "answer"),
			status:     field(record, "status"),
			folderName: field(record, "folder"),
		})
	}
	if len(rows) == 0 {
		return nil, invalid("CSV import needs a header and at least one row")
	}
	return rows, nil
}

type importer struct {
	r      repomanager.Repositories
	userID string
	result *ImportResult
	// existing holds the user's folders, including the ones created so far.
	existing []models.Category
}

func (imp *importer) load(ctx context.Context) error {
	list, err := imp.r.Categories().ListByUser(ctx, imp.userID)
	if err != nil {
		return err
	}
	imp.existing = list
	return nil
}

// ensureFolder returns the id of the user's folder called name under
// parentID, creating it when there is none.
func (imp *importer) ensureFolder(ctx context.Context, name string, parentID *string, color string) (string, error) {
	key := models.NameKey(name)
	for _, c := range imp.existing {
		if c.UserID == imp.userID && c.IsChildOf(parentID) && models.NameKey(c.Name) == key {
			return c.ID, nil
		}
	}

	ts := now()
	created, err := imp.r.Categories().Create(ctx, &models.Category{
		ID:        newID(),
		UserID:    imp.userID,
		Name:      strings.TrimSpace(name),
		ParentID:  parentID,
		Color:     models.NormalizeColor(color, models.DefaultColor),
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		return "", err
	}
	imp.existing = append(imp.existing, *created)
	imp.result.Categories++
	return created.ID, nil
}

// createTree recreates folders parents first and returns the mapping from
// imported ids to the ids now stored. Folders whose parent is not part of the
// import, or that sit on a cycle, are placed at the root.
func (imp *importer) createTree(ctx context.Context, folders []ExportCategory) (map[string]string, error) {
	idMap := make(map[string]string, len(folders))
	inImport := make(map[string]bool, len(folders))
	for _, f := range folders {
		if f.ID != "" {
			inImport[f.ID] = true
		}
	}

	pending := make([]ExportCategory, 0, len(folders))
	for _, f := range folders {
		if strings.TrimSpace(f.Name) == "" {
			imp.result.Skipped++
			continue
		}
		pending = append(pending, f)
	}

	place := func(f ExportCategory, parentID *string) error {
		id, err := imp.ensureFolder(ctx, f.Name, parentID, f.Color)
		if err != nil {
			return err
		}
		if f.ID != "" {
			idMap[f.ID] = id
		}
		return nil
	}

	for len(pending) > 0 {
		var next []ExportCategory
		for _, f := range pending {
			parent := models.NormalizeParentID(f.ParentID)
			switch {
			case parent == nil || !inImport[*parent]:
				if err := place(f, nil); err != nil {
					return nil, err
				}
			case idMap[*parent] != "":
				mapped := idMap[*parent]
				if err := place(f, &mapped); err != nil {
					return nil, err
				}
			default:
				next = append(next, f)
			}
		}

		if len(next) == len(pending) {
			for _, f := range next {
				if err := place(f, nil); err != nil {
					return nil, err
				}
			}
			break
		}
		pending = next
	}
	return idMap, nil
}

// resolveFolder returns the folder a row goes into, or "" when it has none.
func (imp *importer) resolveFolder(ctx context.Context, row importCard, idMap map[string]string) (string, error) {
	if row.folderName != "" {
		return imp.ensureFolder(ctx, row.folderName, nil, "")
	}
	if row.categoryID == "" {
		return "", nil
	}
	if id, ok := idMap[row.categoryID]; ok {
		return id, nil
	}
	if tree.Find(imp.existing, row.categoryID, imp.userID) != nil {
		return row.categoryID, nil
	}
	return "", nil
}

func (imp *importer) createCard(ctx context.Context, row importCard, categoryID string) error {
	ts := now()
	_, err := imp.r.Cards().Create(ctx, &models.Card{
		ID:            newID(),
		UserID:        imp.userID,
		CategoryID:    categoryID,
		Question:      strings.TrimSpace(row.question),
		Answer:        strings.TrimSpace(row.answer),
		MasteryStatus: models.NormalizeStatus(row.status, models.StatusUnknown),
		CreatedAt:     ts,
		UpdatedAt:     ts,
	})
	if err != nil {
		return err
	}
	imp.result.Cards++
	return nil
}

package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// CsvService 联系人CSV批量导入导出。
// 导入逐行写入，不做事务：某一行失败不回滚之前已成功的行。
type CsvService struct {
	contacts *ContactService
}

func NewCsvService(contacts *ContactService) *CsvService {
	return &CsvService{contacts: contacts}
}

// importColumns 导入时识别的列名
var importColumns = map[string]bool{
	"first_name": true, "last_name": true, "email": true, "phone": true,
	"company": true, "title": true, "status": true, "source": true,
}

// exportColumns 导出的固定列集合
var exportColumns = []string{
	"first_name", "last_name", "email", "phone", "company",
	"title", "status", "source", "lead_score", "tags",
}

// ImportContacts 解析CSV文本并逐行创建联系人。
// 返回成功/失败计数和每个失败行的错误描述，行号为文件行号（表头算第1行）。
func (s *CsvService) ImportContacts(ctx context.Context, csvData, createdBy string) *models.ImportResult {
	result := &models.ImportResult{Errors: []string{}}

	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, "CSV内容为空或表头无法解析")
		return result
	}

	colIndex := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if importColumns[name] {
			colIndex[name] = i
		}
	}
	if _, ok := colIndex["email"]; !ok {
		result.Errors = append(result.Errors, "缺少必需的列: email")
		return result
	}

	field := func(row []string, name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	// 数据行从文件第2行开始
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: CSV格式错误", line))
			continue
		}

		email := field(row, "email")
		if email == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 缺少邮箱地址", line))
			continue
		}

		req := &models.ContactCreateRequest{
			FirstName: field(row, "first_name"),
			LastName:  field(row, "last_name"),
			Email:     email,
			Phone:     field(row, "phone"),
			Company:   field(row, "company"),
			Title:     field(row, "title"),
			Status:    models.ContactStatus(field(row, "status")),
			Source:    models.ContactSource(field(row, "source")),
		}
		if req.Status == "" {
			req.Status = models.ContactStatusLead
		}

		if _, err := s.contacts.CreateContact(ctx, req, createdBy); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %s", line, err.Error()))
			continue
		}
		result.Success++
	}

	utils.LogInfo(map[string]interface{}{
		"success": result.Success,
		"failed":  result.Failed,
	}, "联系人CSV导入完成")
	return result
}

// ExportContacts 导出筛选结果为CSV文本，引号和换行按RFC 4180转义
func (s *CsvService) ExportContacts(ctx context.Context, filters *models.ContactFilters) (string, error) {
	contacts, err := s.contacts.GetAllContacts(ctx, filters)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write(exportColumns); err != nil {
		return "", err
	}
	for _, c := range contacts {
		row := []string{
			c.FirstName,
			c.LastName,
			c.Email,
			c.Phone,
			c.Company,
			c.Title,
			string(c.Status),
			string(c.Source),
			strconv.Itoa(c.LeadScore),
			strings.Join(c.Tags, ";"),
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Package repository persists case records into the row store. Rows are the
// source of truth: the case table is also edited by humans, so every read
// re-parses the rows and tolerates hand-typed values.
package repository

import (
	"strconv"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// Column layout of the cases table. Columns 0-16 mirror the registry book
// the clerks keep; the trailing columns carry machine bookkeeping.
const (
	colCategory = iota
	colNumber
	colCode
	colFolios
	colReceivedAt
	colEmissionDate
	colDocumentType
	colExternalDocNumber
	colOriginator
	colOriginatorArea
	colSubject
	colReference
	colPriority
	colStatus
	colReferredArea
	colReferredOwner
	colReferralType
	colCaseID
	colFileName
	colNote

	caseColumns
)

// rowFromRecord serializes a case record into its row representation.
func rowFromRecord(rec *domain.CaseRecord) []string {
	row := make([]string, caseColumns)
	row[colCategory] = string(rec.Category)
	row[colNumber] = strconv.Itoa(rec.Number)
	row[colCode] = rec.Code
	row[colFolios] = strconv.Itoa(rec.Folios)
	row[colReceivedAt] = rec.ReceivedAt
	row[colEmissionDate] = rec.EmissionDate
	row[colDocumentType] = rec.DocumentType
	row[colExternalDocNumber] = rec.ExternalDocNumber
	row[colOriginator] = rec.Originator
	row[colOriginatorArea] = rec.OriginatorArea
	row[colSubject] = rec.Subject
	row[colReference] = rec.Reference
	row[colPriority] = string(rec.Priority)
	row[colStatus] = string(rec.Status)
	row[colReferredArea] = rec.ReferredArea
	row[colReferredOwner] = rec.ReferredOwner
	row[colReferralType] = rec.ReferralType
	row[colCaseID] = rec.CaseID
	row[colFileName] = rec.OriginalFileName
	row[colNote] = rec.Note
	return row
}

// recordFromRow parses a row back into a case record. Short rows and
// unparseable numbers (hand-edited sheets) degrade to zero values instead
// of failing.
func recordFromRow(row []string) *domain.CaseRecord {
	cell := func(idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}
	num := func(idx int) int {
		n, _ := strconv.Atoi(cell(idx))
		return n
	}

	return &domain.CaseRecord{
		Category:          domain.CaseCategory(cell(colCategory)),
		Number:            num(colNumber),
		Code:              cell(colCode),
		Folios:            num(colFolios),
		ReceivedAt:        cell(colReceivedAt),
		EmissionDate:      cell(colEmissionDate),
		DocumentType:      cell(colDocumentType),
		ExternalDocNumber: cell(colExternalDocNumber),
		Originator:        cell(colOriginator),
		OriginatorArea:    cell(colOriginatorArea),
		Subject:           cell(colSubject),
		Reference:         cell(colReference),
		Priority:          domain.Priority(cell(colPriority)),
		Status:            domain.CaseStatus(cell(colStatus)),
		ReferredArea:      cell(colReferredArea),
		ReferredOwner:     cell(colReferredOwner),
		ReferralType:      cell(colReferralType),
		CaseID:            cell(colCaseID),
		OriginalFileName:  cell(colFileName),
		Note:              cell(colNote),
	}
}

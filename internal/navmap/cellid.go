package navmap

import (
	"fmt"
	"strings"

	"gridedit/internal/model"
)

// Separator joins the parts of a cell id. Table ids may not contain it.
const Separator = "-"

const fieldMarker = Separator + "field" + Separator

// CellID builds the public cell identifier <tableId>-field-<rowId>-<field>.
func CellID(tableID string, rowID any, field string) (string, error) {
	if err := checkTableID(tableID); err != nil {
		return "", err
	}
	return tableID + fieldMarker + model.RowKey(rowID) + Separator + field, nil
}

func checkTableID(tableID string) error {
	if strings.TrimSpace(tableID) == "" {
		return model.ConfigErr("table id is empty")
	}
	if strings.Contains(tableID, Separator) {
		return model.ConfigErr(fmt.Sprintf("table id must not contain %q", Separator), tableID)
	}
	return nil
}

func cellID(tableID, rowKey, field string) string {
	return tableID + fieldMarker + rowKey + Separator + field
}

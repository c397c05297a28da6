package testsCommon

import "github.com/iulianpascalau/load-dashboard/services/importer/common"

// FileReaderStub -
type FileReaderStub struct {
	ReadTableHandler func(filePath string, sheet string) (*common.Table, error)
}

// ReadTable -
func (stub *FileReaderStub) ReadTable(filePath string, sheet string) (*common.Table, error) {
	if stub.ReadTableHandler != nil {
		return stub.ReadTableHandler(filePath, sheet)
	}

	return &common.Table{}, nil
}

// IsInterfaceNil -
func (stub *FileReaderStub) IsInterfaceNil() bool {
	return stub == nil
}

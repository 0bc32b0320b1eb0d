package catalog

import (
	"regexp"

	"filehub/internal/config"
	catalogSvc "filehub/internal/domain/services/catalog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = regexp.MustCompile(`^[^/]+$`)

func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.Match(noSlashes).Error("folder name cannot contain slashes"),
	}
}

func fileNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, config.MaxFileNameLength),
		validation.Match(noSlashes).Error("file name cannot contain slashes"),
	}
}

// validateCreateFolderRequest validates a folder creation request
func (s *catalogService) validateCreateFolderRequest(req *catalogSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, folderNameRules()...),
	)
}

// validateCreateFileRequest validates a file registration request
func (s *catalogService) validateCreateFileRequest(req *catalogSvc.CreateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, fileNameRules()...),
		validation.Field(&req.BlobHandle, validation.Required),
		validation.Field(&req.Size, validation.Min(int64(0))),
	)
}

// validateUploadFileRequest validates an upload before any bytes are stored
func (s *catalogService) validateUploadFileRequest(req *catalogSvc.UploadFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, fileNameRules()...),
		validation.Field(&req.Content, validation.NotNil),
	)
}

package connector

import (
	"fmt"

	"github.com/levinine/browserconnector/browser"
	"github.com/levinine/browserconnector/message"
)

// ConvertFiles turns a browser file tree into uploaded files for a ServerRequest. Values that
// are already message.UploadedFile are kept as they are, file descriptors become uploaded
// files, and nested maps are converted recursively with the same structure.
func ConvertFiles(files map[string]interface{}) (message.UploadedFiles, error) {
	return convertFiles(files, "")
}

func convertFiles(files map[string]interface{}, prefix string) (message.UploadedFiles, error) {
	ret := make(message.UploadedFiles, len(files))
	for name, value := range files {
		field := name
		if prefix != "" {
			field = prefix + "[" + name + "]"
		}
		switch v := value.(type) {
		case message.UploadedFile:
			ret[name] = v
		case browser.FileDescriptor:
			ret[name] = uploadedFileFromDescriptor(v)
		case *browser.FileDescriptor:
			if v == nil {
				return nil, &InvalidArgumentError{Argument: "file " + field, Reason: "nil file descriptor"}
			}
			ret[name] = uploadedFileFromDescriptor(*v)
		case browser.Files:
			nested, err := convertFiles(v, field)
			if err != nil {
				return nil, err
			}
			ret[name] = nested
		case map[string]interface{}:
			nested, err := convertFiles(v, field)
			if err != nil {
				return nil, err
			}
			ret[name] = nested
		case message.UploadedFiles:
			nested, err := convertFiles(v, field)
			if err != nil {
				return nil, err
			}
			ret[name] = nested
		default:
			return nil, &InvalidArgumentError{Argument: "file " + field, Reason: fmt.Sprintf("unsupported type %T", value)}
		}
	}
	return ret, nil
}

func uploadedFileFromDescriptor(d browser.FileDescriptor) message.UploadedFile {
	return message.NewUploadedFile(d.TmpName, d.Name, d.Type, d.Size, d.Error)
}

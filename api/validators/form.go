package validators

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/shopspring/decimal"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	fileType    = reflect.TypeOf(transport.File{})
)

// DecodeForm fills dest, a pointer to struct, from a multipart form. Fields
// are matched by json name, or by form name for json-hidden fields, which
// mirrors the client's multipart encoder.
func DecodeForm(r *http.Request, dest any) error {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body").
			WithMessages("Request body is not a valid multipart form")
	}
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("form destination must be a struct pointer, got %T", dest))
	}
	if err := fillStruct(v.Elem(), r.MultipartForm); err != nil {
		return err
	}
	return validate(dest, "")
}

func formName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		name, _, _ = strings.Cut(sf.Tag.Get("form"), ",")
		return name
	}
	if name == "" {
		return sf.Name
	}
	return name
}

func fillStruct(v reflect.Value, form *multipart.Form) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := formName(sf)
		if name == "" {
			continue
		}
		field := v.Field(i)

		if isFileField(sf.Type) {
			headers := form.File[name]
			if len(headers) == 0 {
				continue
			}
			file, err := readFile(headers[0])
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload").WithMessages(name + " could not be read")
			}
			if sf.Type.Kind() == reflect.Pointer {
				field.Set(reflect.ValueOf(file))
			} else {
				field.Set(reflect.ValueOf(*file))
			}
			continue
		}

		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			continue
		}
		if err := setField(field, values); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form field").
				WithMessages(fmt.Sprintf("%s %s", name, err.Error()))
		}
	}
	return nil
}

func isFileField(t reflect.Type) bool {
	return t == fileType || (t.Kind() == reflect.Pointer && t.Elem() == fileType)
}

func readFile(header *multipart.FileHeader) (*transport.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &transport.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func setField(field reflect.Value, values []string) error {
	if field.Kind() == reflect.Slice && field.Type() != decimalType {
		out := reflect.MakeSlice(field.Type(), 0, len(values))
		for _, raw := range values {
			elem := reflect.New(field.Type().Elem()).Elem()
			if err := setScalar(elem, raw); err != nil {
				return err
			}
			out = reflect.Append(out, elem)
		}
		field.Set(out)
		return nil
	}
	return setScalar(field, values[0])
}

func setScalar(field reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field.Type() {
	case decimalType:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case timeType:
		if raw == "" {
			return nil
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("must be an RFC 3339 timestamp")
		}
		field.Set(reflect.ValueOf(ts))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("must be true or false")
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("has unsupported type %s", field.Type())
	}
	return nil
}

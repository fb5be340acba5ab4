package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// File is a file part of a multipart body.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Form is a multipart body given as explicit fields.
type Form map[string]any

func encodeBody(body any, encoding Encoding) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch encoding {
	case EncodingMultipart:
		return encodeMultipart(body)
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	}
}

type formField struct {
	key   string
	value reflect.Value
}

// encodeMultipart writes one form field per top-level key. Slice values repeat
// the key once per element; File values become file parts; nil values are skipped.
func encodeMultipart(body any) (io.Reader, string, error) {
	fields, err := topLevelFields(body)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range fields {
		if err := writeField(writer, field.key, field.value); err != nil {
			return nil, "", fmt.Errorf("field %q: %w", field.key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func topLevelFields(body any) ([]formField, error) {
	v := reflect.ValueOf(body)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("multipart body map must have string keys, got %s", v.Type())
		}
		keys := make([]string, 0, v.Len())
		for _, key := range v.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		fields := make([]formField, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, formField{key: key, value: v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))})
		}
		return fields, nil
	case reflect.Struct:
		return structFields(v), nil
	default:
		return nil, fmt.Errorf("multipart body must be a map or struct, got %s", v.Type())
	}
}

// structFields names fields after their json tag so both encodings agree on keys;
// a `form` tag names fields hidden from JSON.
func structFields(v reflect.Value) []formField {
	t := v.Type()
	fields := make([]formField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			// json-hidden fields (file attachments) may still name a form field.
			if name, opts, _ = strings.Cut(sf.Tag.Get("form"), ","); name == "" {
				continue
			}
		}
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, structFields(v.Field(i))...)
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fv := v.Field(i)
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		fields = append(fields, formField{key: name, value: fv})
	}
	return fields
}

var fileType = reflect.TypeOf(File{})

func writeField(w *multipart.Writer, key string, v reflect.Value) error {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	if v.Type() == fileType {
		return writeFile(w, key, v.Interface().(File))
	}
	if (v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8) || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := writeField(w, key, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}

	text, err := formatScalar(v)
	if err != nil {
		return err
	}
	return w.WriteField(key, text)
}

func writeFile(w *multipart.Writer, key string, f File) error {
	name := f.Name
	if name == "" {
		name = key
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(key), escapeQuotes(name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func formatScalar(v reflect.Value) (string, error) {
	if v.CanInterface() {
		switch typed := v.Interface().(type) {
		case time.Time:
			return typed.Format(time.RFC3339), nil
		case fmt.Stringer:
			return typed.String(), nil
		}
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	}
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

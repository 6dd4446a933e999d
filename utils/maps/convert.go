package maps

import (
	"annolab.com/seqtag/utils"
	"fmt"
	"reflect"
)

func decodeStruct(fromMap *map[string]interface{}, toPtr interface{}) error {
	value := reflect.ValueOf(toPtr)
	if value.Kind() != reflect.Ptr {
		return fmt.Errorf("%v is not a pointer", toPtr)
	}
	value = value.Elem()
	if value.Kind() != reflect.Struct {
		return fmt.Errorf("%v is not a struct pointer", toPtr)
	}
	valueType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		fieldValue := value.Field(i)
		fieldInfo := valueType.Field(i)
		mapKey, ok := fieldInfo.Tag.Lookup("json")
		if !ok {
			continue
		}
		rawContents, ok := (*fromMap)[mapKey]
		if !ok {
			continue
		}
		if err := decodeValue(&rawContents, fieldValue); err != nil {
			return fmt.Errorf("got error at field %s: %w", fieldInfo.Name, err)
		}
	}
	return nil
}

func decodeValue(raw *interface{}, fieldValue reflect.Value) error {
	switch fieldValue.Kind() {
	case reflect.Struct:
		innerMap, ok := (*raw).(map[string]interface{})
		if !ok {
			return nil
		}
		return decodeStruct(&innerMap, structPointer(fieldValue))
	case reflect.Slice:
		return decodeSlice(raw, fieldValue)
	case reflect.Map:
		return decodeMap(raw, fieldValue)
	case reflect.Ptr:
		if *raw == nil {
			return nil
		}
		fieldValue.Set(reflect.New(fieldValue.Type().Elem()))
		return decodeValue(raw, fieldValue.Elem())
	default:
		return decodePrimitive(raw, fieldValue)
	}
}

func decodePrimitive(raw *interface{}, fieldValue reflect.Value) (err error) {
	defer utils.RecoverWithError(&err)
	if raw == nil || *raw == nil {
		return nil
	}
	fieldValue.Set(reflect.ValueOf(*raw).Convert(fieldValue.Type()))
	return nil
}

func decodeSlice(raw *interface{}, sliceValue reflect.Value) error {
	value, ok := (*raw).([]interface{})
	if !ok {
		return fmt.Errorf("expected slice, got %v type", reflect.TypeOf(*raw))
	}
	elemType := sliceValue.Type().Elem()

	values := make([]reflect.Value, len(value))
	for index, elem := range value {
		elem := elem
		elemValue := reflect.New(elemType).Elem()
		if err := decodeValue(&elem, elemValue); err != nil {
			return err
		}
		values[index] = elemValue
	}
	sliceValue.Set(reflect.Append(sliceValue, values...))
	return nil
}

func decodeMap(raw *interface{}, mapValue reflect.Value) error {
	value, ok := (*raw).(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected map, got %v type", reflect.TypeOf(*raw))
	}
	// mapValue starts out as a nil map
	mv := reflect.MakeMap(mapValue.Type())
	elemType := mapValue.Type().Elem()
	for key, elem := range value {
		elem := elem
		elemValue := reflect.New(elemType).Elem()
		if err := decodeValue(&elem, elemValue); err != nil {
			return err
		}
		mv.SetMapIndex(reflect.ValueOf(key), elemValue)
	}
	mapValue.Set(mv)
	return nil
}

func encodeStruct(mapToUpdate *map[string]interface{}, v interface{}) error {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Ptr {
		return fmt.Errorf("%v is not a pointer", v)
	}
	value = value.Elem()
	if value.Kind() != reflect.Struct {
		return fmt.Errorf("%v is not a struct pointer", v)
	}
	valueType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		fieldValue := value.Field(i)
		fieldInfo := valueType.Field(i)
		mapKey, ok := fieldInfo.Tag.Lookup("json")
		if !ok {
			continue
		}
		rawContents := (*mapToUpdate)[mapKey]
		encoded, err := encodeValue(&rawContents, &fieldValue)
		if err != nil {
			return fmt.Errorf("got error at field %s: %w", fieldInfo.Name, err)
		}
		if encoded != nil {
			(*mapToUpdate)[mapKey] = *encoded
		} else {
			(*mapToUpdate)[mapKey] = nil
		}
	}
	return nil
}

func encodeValue(current *interface{}, valuePtr *reflect.Value) (*interface{}, error) {
	v := *valuePtr
	switch v.Kind() {
	case reflect.Struct:
		return encodeInnerStruct(current, v)
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		pointed := v.Elem()
		return encodeValue(current, &pointed)
	case reflect.Slice:
		slice, err := encodeSlice(v)
		if err != nil {
			return nil, err
		}
		r := interface{}(*slice)
		return &r, nil
	case reflect.Map:
		m, err := encodeMap(v)
		if err != nil {
			return nil, err
		}
		r := interface{}(*m)
		return &r, nil
	default:
		r := v.Interface()
		return &r, nil
	}
}

func encodeInnerStruct(current *interface{}, value reflect.Value) (*interface{}, error) {
	var innerMap map[string]interface{}
	if current == nil || *current == nil {
		innerMap = map[string]interface{}{}
	} else if m, ok := (*current).(map[string]interface{}); ok {
		innerMap = m
	} else {
		return nil, fmt.Errorf(
			"expected inner structure to be map, got %v",
			reflect.TypeOf(*current),
		)
	}
	if err := encodeStruct(&innerMap, structPointer(value)); err != nil {
		return nil, err
	}
	r := interface{}(innerMap)
	return &r, nil
}

func encodeSlice(sliceField reflect.Value) (*[]interface{}, error) {
	slice := make([]interface{}, sliceField.Len())
	for index := 0; index < sliceField.Len(); index++ {
		elemValue := sliceField.Index(index)
		encoded, err := encodeValue(nil, &elemValue)
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			slice[index] = nil
			continue
		}
		slice[index] = *encoded
	}
	return &slice, nil
}

func encodeMap(mapField reflect.Value) (*map[string]interface{}, error) {
	m := map[string]interface{}{}
	iter := mapField.MapRange()
	for iter.Next() {
		keyValue, elemValue := iter.Key(), iter.Value()
		// iter.Value() is not addressable even for struct kinds,
		// so rebind through an interface first
		elem := elemValue.Interface()
		elemValue = reflect.ValueOf(&elem).Elem()

		encoded, err := encodeValue(nil, &elemValue)
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			m[keyValue.String()] = nil
			continue
		}
		m[keyValue.String()] = *encoded
	}
	return &m, nil
}

func structPointer(v reflect.Value) interface{} {
	if !v.CanAddr() {
		val := v.Interface()
		return reflect.ValueOf(&val).Interface()
	}
	return v.Addr().Interface()
}

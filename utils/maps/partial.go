package maps

import (
	"annolab.com/seqtag/utils"
	"encoding/json"
	"reflect"
)

// PartialDocument is a struct view over a JSON document that may carry
// fields the struct doesn't declare. Undeclared fields survive a
// get-update-save cycle untouched.
type PartialDocument interface {
	getRaw() *map[string]interface{}
	setRaw(*map[string]interface{})
	MarshalJSON() ([]byte, error)
}

type BaseDocument struct {
	rawMap *map[string]interface{}
}

func (doc *BaseDocument) getRaw() *map[string]interface{} {
	return doc.rawMap
}

func (doc *BaseDocument) setRaw(raw *map[string]interface{}) {
	doc.rawMap = raw
}

func (doc *BaseDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(doc.getRaw())
}

func FillFromMap(doc PartialDocument, from *map[string]interface{}) error {
	err := decodeStruct(from, doc)
	if err != nil {
		return err
	}
	doc.setRaw(from)
	return nil
}

func CopyValues(from PartialDocument, to PartialDocument) error {
	raw := from.getRaw()
	err := decodeStruct(raw, to)
	if err != nil {
		return err
	}
	cachedMap := map[string]interface{}{}
	err = encodeStruct(&cachedMap, to)
	if err != nil {
		return err
	}
	to.setRaw(&cachedMap)
	return nil
}

func ApplyUpdates(doc PartialDocument, updateFunc interface{}) (err error) {
	if updateFunc == nil {
		return nil
	}
	defer utils.RecoverWithError(&err)
	funcValue := reflect.ValueOf(updateFunc)
	docValue := reflect.ValueOf(doc)
	funcValue.Call([]reflect.Value{docValue})
	err = encodeStruct(doc.getRaw(), doc)
	return
}

package models

// Photo: загруженное изображение, Path указывает на файл в хранилище
type Photo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ItemPhoto связывает товар с фотографией и хранит флаги главных фото
type ItemPhoto struct {
	ID           int64 `json:"id"`
	ItemID       int64 `json:"item_id"`
	PhotoID      int64 `json:"photo_id"`
	IsGeneralOne bool  `json:"is_general_one"`
	IsGeneralTwo bool  `json:"is_general_two"`
}

// Flag возвращает флаг для слота
func (p *ItemPhoto) Flag(slot Slot) bool {
	if slot == SlotTwo {
		return p.IsGeneralTwo
	}
	return p.IsGeneralOne
}

// SetFlag меняет флаг в памяти
func (p *ItemPhoto) SetFlag(slot Slot, value bool) {
	if slot == SlotTwo {
		p.IsGeneralTwo = value
		return
	}
	p.IsGeneralOne = value
}

package usecase

import "github.com/spot-resolver/internal/domain"

// Recorder собирает вызовы MapCanvas и Presenter в список инструкций
type Recorder struct {
	instructions []domain.Instruction
}

// NewRecorder - создание пустого рекордера
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) AddMarker(m domain.Marker) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionAddMarker, Marker: &m, Key: m.Key})
}

func (r *Recorder) RemoveMarker(key domain.MarkerKey) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionRemoveMarker, Key: key})
}

func (r *Recorder) FlyTo(point domain.GeoPoint) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionFlyTo, Point: &point})
}

func (r *Recorder) ShowDetail(d domain.Detail) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionShowDetail, Detail: &d})
}

func (r *Recorder) ShowNotice(n domain.Notice) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionShowNotice, Notice: &n})
}

func (r *Recorder) DismissNotice(id string) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionDismissNotice, NoticeID: id})
}

func (r *Recorder) ShowSlotPicker(p domain.SlotPicker) {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionShowSlotPicker, Picker: &p})
}

func (r *Recorder) ClosePanel() {
	r.instructions = append(r.instructions, domain.Instruction{Type: domain.InstructionClosePanel})
}

// Len - количество накопленных инструкций
func (r *Recorder) Len() int {
	return len(r.instructions)
}

// Drain возвращает накопленные инструкции и очищает буфер
func (r *Recorder) Drain() []domain.Instruction {
	out := r.instructions
	r.instructions = nil
	return out
}

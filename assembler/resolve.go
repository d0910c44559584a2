package assembler

import "github.com/aj-kip/erfindung/isa"

// Resolve walks the fixup list, patching each placeholder instruction's
// low 16 bits with its label's resolved program address. After this pass
// the program buffer is immutable; the label table and fixup list are no
// longer needed and may be dropped.
func Resolve(s *TextState) {
	for _, fix := range s.Fixups {
		info, ok := s.Labels[fix.Label]
		if !ok {
			s.Errors.AddError(NewError(pos(s, fix.Line), ErrorUndefinedLabel, "undefined label \""+fix.Label+"\""))
			continue
		}
		if info.Index > 0x7FFF {
			s.Errors.AddError(NewError(pos(s, fix.Line), ErrorLabelOutOfRange, "label \""+fix.Label+"\" resolves past the addressable range"))
			continue
		}

		cur := s.Program[fix.Index]
		if uint32(cur)&0xFFFF != 0 {
			s.Errors.AddError(NewError(pos(s, fix.Line), ErrorUndefinedLabel,
				"internal error: fixup slot for \""+fix.Label+"\" was not zero before patching"))
			continue
		}
		immd, err := isa.EncodeImmdAddr(uint32(info.Index))
		if err != nil {
			s.Errors.AddError(NewError(pos(s, fix.Line), ErrorLabelOutOfRange, err.Error()))
			continue
		}
		s.Program[fix.Index] = isa.Word(uint32(cur) | immd)
	}
}

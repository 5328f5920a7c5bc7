package app

import (
	"github.com/vk/metascan/internal/handlers"
	"github.com/vk/metascan/modules/fileinfo"
	"github.com/vk/metascan/modules/hash"
	"github.com/vk/metascan/modules/htmlmeta"
	"github.com/vk/metascan/modules/mimetype"
	"github.com/vk/metascan/modules/textmeta"
)

// coreModules is the definitive list of handler modules compiled into the
// metascan binary. Unit manifests bind operations to the handlers these
// modules register.
var coreModules = []handlers.Module{
	&fileinfo.Module{},
	&hash.Module{},
	&mimetype.Module{},
	&htmlmeta.Module{},
	&textmeta.Module{},
}
